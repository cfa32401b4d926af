package preprocess

import (
	"go.uber.org/zap"

	"wmlconv/wml"
)

// Settings selects preprocessing passes.
type Settings struct {
	AcceptRevisions bool
	SimplifyMarkup  bool
	Simplify        SimplifySettings
	// applied in order after other passes
	Replacements []Replacement
}

// Run applies requested passes to every story of the loaded document.
// Styles part is included when accepting revisions since it may carry
// property changes. Invalid replacement fails before anything is changed.
func Run(doc *wml.Document, s Settings, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	for _, r := range s.Replacements {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	if !s.AcceptRevisions && !s.SimplifyMarkup && len(s.Replacements) == 0 {
		return nil
	}
	stories := doc.Stories()
	if s.AcceptRevisions && doc.Styles != nil {
		stories = append(stories, doc.Styles)
	}
	for _, story := range stories {
		var accepted, simplified, replaced int
		if s.AcceptRevisions {
			accepted = AcceptRevisions(story.Root)
		}
		if story != doc.Styles {
			if s.SimplifyMarkup {
				simplified = Simplify(story.Root, s.Simplify)
			}
			for _, r := range s.Replacements {
				n, err := ReplaceText(story.Root, r)
				if err != nil {
					return err
				}
				replaced += n
			}
		}
		if accepted+simplified+replaced > 0 {
			log.Debug("Preprocessed part",
				zap.String("part", story.Part),
				zap.Int("revisions", accepted),
				zap.Int("simplified", simplified),
				zap.Int("replaced", replaced))
		}
	}
	return nil
}
