// internal/services/character_service.go
package services

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	apperrors "github.com/Corphon/NovelForge/internal/errors"
	"github.com/Corphon/NovelForge/internal/models"
	"github.com/Corphon/NovelForge/internal/storage"
	"github.com/Corphon/NovelForge/internal/utils"
)

const castFile = "cast.json"

// excerptRadius is how many characters of prose surround a mention excerpt.
const excerptRadius = 40

// castDocument is the stored form of a novel's character domain. Point-of-view
// assignments live on the scenes themselves.
type castDocument struct {
	Characters    []models.Character      `json:"characters"`
	States        []models.CharacterState `json:"states"`
	Relationships []models.Relationship   `json:"relationships"`
}

// CharacterService manages character profiles, their evolving states,
// relationships and point-of-view assignments.
type CharacterService struct {
	storage    *storage.FileStorage
	locks      *LockManager
	manuscript *ManuscriptService
	logger     *utils.Logger
	now        func() time.Time
}

// NewCharacterService creates the service. It shares the novel locks with the
// manuscript service.
func NewCharacterService(fs *storage.FileStorage, locks *LockManager, manuscript *ManuscriptService, logger *utils.Logger) *CharacterService {
	if logger == nil {
		logger = utils.GetLogger()
	}
	return &CharacterService{storage: fs, locks: locks, manuscript: manuscript, logger: logger, now: time.Now}
}

func castLockKey(novelID string) string {
	return novelID + "#cast"
}

func (s *CharacterService) loadCast(novelID string) (*castDocument, error) {
	if err := validNovelID(novelID); err != nil {
		return nil, err
	}
	if !s.storage.FileExists(novelDir(novelID), structureFile) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("novel %s not found", novelID), nil)
	}
	doc := &castDocument{}
	if err := s.storage.LoadJSONFile(novelDir(novelID), castFile, doc); err != nil && !errors.Is(err, storage.ErrNotExist) {
		return nil, apperrors.NewProcessingError("load cast", err)
	}
	return doc, nil
}

func (s *CharacterService) updateCast(novelID string, fn func(doc *castDocument) error) error {
	return s.locks.WithLock(castLockKey(novelID), func() error {
		doc, err := s.loadCast(novelID)
		if err != nil {
			return err
		}
		if err := fn(doc); err != nil {
			return err
		}
		if err := s.storage.SaveJSONFile(novelDir(novelID), castFile, doc); err != nil {
			return apperrors.NewProcessingError("save cast", err)
		}
		return nil
	})
}

func (s *CharacterService) readCast(novelID string) (*castDocument, error) {
	var doc *castDocument
	err := s.locks.WithReadLock(castLockKey(novelID), func() error {
		var err error
		doc, err = s.loadCast(novelID)
		return err
	})
	return doc, err
}

// ListCharacters returns the cast sorted by name.
func (s *CharacterService) ListCharacters(novelID string) ([]models.Character, error) {
	doc, err := s.readCast(novelID)
	if err != nil {
		return nil, err
	}
	out := append([]models.Character{}, doc.Characters...)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

// GetCharacter returns one character.
func (s *CharacterService) GetCharacter(novelID, characterID string) (*models.Character, error) {
	doc, err := s.readCast(novelID)
	if err != nil {
		return nil, err
	}
	c, err := characterByID(doc, characterID)
	if err != nil {
		return nil, err
	}
	out := *c
	return &out, nil
}

// CreateCharacter adds a character. Names are unique within a novel, ignoring case.
func (s *CharacterService) CreateCharacter(novelID string, req models.CreateCharacterRequest) (*models.Character, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("character name is required", nil)
	}
	var out models.Character
	err := s.updateCast(novelID, func(doc *castDocument) error {
		if nameTaken(doc, name, "") {
			return apperrors.NewConflictError(fmt.Sprintf("a character named %q already exists", name), nil)
		}
		now := s.now().UTC()
		out = models.Character{
			ID:          uuid.NewString(),
			NovelID:     novelID,
			Name:        name,
			Aliases:     cleanAliases(req.Aliases),
			Role:        strings.TrimSpace(req.Role),
			Description: req.Description,
			Background:  req.Background,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		doc.Characters = append(doc.Characters, out)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateCharacter applies a partial update.
func (s *CharacterService) UpdateCharacter(novelID, characterID string, req models.UpdateCharacterRequest) (*models.Character, error) {
	var out models.Character
	err := s.updateCast(novelID, func(doc *castDocument) error {
		c, err := characterByID(doc, characterID)
		if err != nil {
			return err
		}
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return apperrors.NewValidationError("character name is required", nil)
			}
			if nameTaken(doc, name, characterID) {
				return apperrors.NewConflictError(fmt.Sprintf("a character named %q already exists", name), nil)
			}
			c.Name = name
		}
		if req.Aliases != nil {
			c.Aliases = cleanAliases(*req.Aliases)
		}
		if req.Role != nil {
			c.Role = strings.TrimSpace(*req.Role)
		}
		if req.Description != nil {
			c.Description = *req.Description
		}
		if req.Background != nil {
			c.Background = *req.Background
		}
		c.UpdatedAt = s.now().UTC()
		out = *c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteCharacter removes a character with its states and relationships and clears
// any scene narrated by it.
func (s *CharacterService) DeleteCharacter(novelID, characterID string) error {
	err := s.updateCast(novelID, func(doc *castDocument) error {
		if _, err := characterByID(doc, characterID); err != nil {
			return err
		}
		chars := doc.Characters[:0]
		for _, c := range doc.Characters {
			if c.ID != characterID {
				chars = append(chars, c)
			}
		}
		doc.Characters = chars

		states := doc.States[:0]
		for _, st := range doc.States {
			if st.CharacterID != characterID {
				states = append(states, st)
			}
		}
		doc.States = states

		rels := doc.Relationships[:0]
		for _, r := range doc.Relationships {
			if r.FromID != characterID && r.ToID != characterID {
				rels = append(rels, r)
			}
		}
		doc.Relationships = rels
		return nil
	})
	if err != nil {
		return err
	}
	return s.manuscript.ClearPOV(novelID, characterID)
}

// ListStates returns a character's state snapshots, oldest first.
func (s *CharacterService) ListStates(novelID, characterID string) ([]models.CharacterState, error) {
	doc, err := s.readCast(novelID)
	if err != nil {
		return nil, err
	}
	if _, err := characterByID(doc, characterID); err != nil {
		return nil, err
	}
	out := []models.CharacterState{}
	for _, st := range doc.States {
		if st.CharacterID == characterID {
			out = append(out, st)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// CreateState records a new state snapshot, optionally anchored to a scene.
func (s *CharacterService) CreateState(novelID, characterID string, req models.CreateStateRequest) (*models.CharacterState, error) {
	label := strings.TrimSpace(req.Label)
	if label == "" {
		return nil, apperrors.NewValidationError("state label is required", nil)
	}
	if req.SceneID != "" {
		if err := s.requireScene(novelID, req.SceneID); err != nil {
			return nil, err
		}
	}

	var out models.CharacterState
	err := s.updateCast(novelID, func(doc *castDocument) error {
		if _, err := characterByID(doc, characterID); err != nil {
			return err
		}
		out = models.CharacterState{
			ID:          uuid.NewString(),
			CharacterID: characterID,
			SceneID:     req.SceneID,
			Label:       label,
			Notes:       req.Notes,
			Attributes:  req.Attributes,
			CreatedAt:   s.now().UTC(),
		}
		doc.States = append(doc.States, out)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListRelationships returns every relationship of the novel.
func (s *CharacterService) ListRelationships(novelID string) ([]models.Relationship, error) {
	doc, err := s.readCast(novelID)
	if err != nil {
		return nil, err
	}
	return append([]models.Relationship{}, doc.Relationships...), nil
}

// CreateRelationship links two distinct characters.
func (s *CharacterService) CreateRelationship(novelID string, req models.CreateRelationshipRequest) (*models.Relationship, error) {
	kind := strings.TrimSpace(req.Kind)
	if kind == "" {
		return nil, apperrors.NewValidationError("relationship kind is required", nil)
	}
	if req.FromID == req.ToID {
		return nil, apperrors.NewValidationError("a relationship needs two different characters", nil)
	}

	var out models.Relationship
	err := s.updateCast(novelID, func(doc *castDocument) error {
		for _, id := range []string{req.FromID, req.ToID} {
			if _, err := characterByID(doc, id); err != nil {
				return err
			}
		}
		out = models.Relationship{
			ID:          uuid.NewString(),
			NovelID:     novelID,
			FromID:      req.FromID,
			ToID:        req.ToID,
			Kind:        kind,
			Description: req.Description,
			CreatedAt:   s.now().UTC(),
		}
		doc.Relationships = append(doc.Relationships, out)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteRelationship removes one relationship.
func (s *CharacterService) DeleteRelationship(novelID, relationshipID string) error {
	return s.updateCast(novelID, func(doc *castDocument) error {
		for i, r := range doc.Relationships {
			if r.ID == relationshipID {
				doc.Relationships = append(doc.Relationships[:i], doc.Relationships[i+1:]...)
				return nil
			}
		}
		return apperrors.NewNotFoundError(fmt.Sprintf("relationship %s not found", relationshipID), nil)
	})
}

// ListPOVAssignments derives the assignments from the scenes, in reading order.
func (s *CharacterService) ListPOVAssignments(novelID string) ([]models.POVAssignment, error) {
	n, err := s.manuscript.GetStructure(novelID)
	if err != nil {
		return nil, err
	}
	out := []models.POVAssignment{}
	for _, a := range n.Acts {
		for _, c := range a.Chapters {
			for _, sc := range c.Scenes {
				if sc.POVCharacterID != nil {
					out = append(out, models.POVAssignment{SceneID: sc.ID, CharacterID: *sc.POVCharacterID})
				}
			}
		}
	}
	return out, nil
}

// AssignPOV sets or, with an empty character id, clears a scene's narrator.
func (s *CharacterService) AssignPOV(novelID string, req models.POVAssignment) error {
	if req.SceneID == "" {
		return apperrors.NewValidationError("sceneId is required", nil)
	}
	if req.CharacterID != "" {
		if _, err := s.GetCharacter(novelID, req.CharacterID); err != nil {
			return err
		}
	}
	pov := req.CharacterID
	_, err := s.manuscript.UpdateScene(novelID, req.SceneID, models.UpdateSceneRequest{POVCharacterID: &pov})
	return err
}

// Mentions scans scene prose for the character's name and aliases, whole words
// and case-insensitively, and returns one entry per scene that mentions them.
func (s *CharacterService) Mentions(novelID, characterID string) ([]models.Mention, error) {
	if characterID == "" {
		return nil, apperrors.NewValidationError("characterId is required", nil)
	}
	c, err := s.GetCharacter(novelID, characterID)
	if err != nil {
		return nil, err
	}
	n, err := s.manuscript.GetStructure(novelID)
	if err != nil {
		return nil, err
	}

	matcher := newMentionMatcher(c)
	out := []models.Mention{}
	for _, a := range n.Acts {
		for _, ch := range a.Chapters {
			for _, sc := range ch.Scenes {
				locs := matcher.find(sc.Content)
				if len(locs) == 0 {
					continue
				}
				out = append(out, models.Mention{
					CharacterID: characterID,
					SceneID:     sc.ID,
					SceneTitle:  sc.DisplayTitle(),
					Count:       len(locs),
					Excerpt:     excerpt(sc.Content, locs[0][0], locs[0][1]),
				})
			}
		}
	}
	return out, nil
}

func (s *CharacterService) requireScene(novelID, sceneID string) error {
	n, err := s.manuscript.GetStructure(novelID)
	if err != nil {
		return err
	}
	_, _, _, err = sceneByID(n, sceneID)
	return err
}

// mentionMatcher finds a character's name and aliases in prose. A hit must stand
// alone: in spaced scripts the runes around it may not continue a word. Han and kana
// prose has no spaces, so a neighbour in those scripts never joins.
type mentionMatcher struct {
	patterns []*regexp.Regexp
}

func newMentionMatcher(c *models.Character) *mentionMatcher {
	names := append([]string{c.Name}, c.Aliases...)
	// Longest first so "Mara Lind" claims its text before "Mara".
	sort.SliceStable(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })

	m := &mentionMatcher{}
	seen := map[string]bool{}
	for _, name := range names {
		name = strings.TrimSpace(name)
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true
		m.patterns = append(m.patterns, regexp.MustCompile(`(?i)`+regexp.QuoteMeta(name)))
	}
	return m
}

// find returns the byte ranges of every standalone mention, in text order.
func (m *mentionMatcher) find(content string) [][]int {
	var out [][]int
	for _, re := range m.patterns {
		for _, loc := range re.FindAllStringIndex(content, -1) {
			if !standalone(content, loc[0], loc[1]) || overlapsAny(out, loc) {
				continue
			}
			out = append(out, loc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}

func standalone(content string, start, end int) bool {
	if start > 0 {
		before, _ := utf8.DecodeLastRuneInString(content[:start])
		first, _ := utf8.DecodeRuneInString(content[start:end])
		if joinsWord(before, first) {
			return false
		}
	}
	if end < len(content) {
		last, _ := utf8.DecodeLastRuneInString(content[start:end])
		after, _ := utf8.DecodeRuneInString(content[end:])
		if joinsWord(last, after) {
			return false
		}
	}
	return true
}

// joinsWord reports whether two adjacent runes belong to one space-delimited word.
func joinsWord(a, b rune) bool {
	return isWordRune(a) && isWordRune(b) && !models.IsUnspacedRune(a) && !models.IsUnspacedRune(b)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func overlapsAny(locs [][]int, loc []int) bool {
	for _, l := range locs {
		if loc[0] < l[1] && l[0] < loc[1] {
			return true
		}
	}
	return false
}

func excerpt(content string, start, end int) string {
	from := start - excerptRadius
	if from < 0 {
		from = 0
	}
	to := end + excerptRadius
	if to > len(content) {
		to = len(content)
	}
	// Keep the cut on rune boundaries.
	for from > 0 && !utf8.RuneStart(content[from]) {
		from--
	}
	for to < len(content) && !utf8.RuneStart(content[to]) {
		to++
	}
	out := strings.Join(strings.Fields(content[from:to]), " ")
	if from > 0 {
		out = "…" + out
	}
	if to < len(content) {
		out += "…"
	}
	return out
}

func characterByID(doc *castDocument, id string) (*models.Character, error) {
	for i := range doc.Characters {
		if doc.Characters[i].ID == id {
			return &doc.Characters[i], nil
		}
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("character %s not found", id), nil)
}

func nameTaken(doc *castDocument, name, exceptID string) bool {
	for _, c := range doc.Characters {
		if c.ID != exceptID && strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}

func cleanAliases(aliases []string) []string {
	var out []string
	for _, a := range aliases {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}
