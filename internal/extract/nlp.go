package extract

import (
	"context"
	"strings"

	"github.com/blevesearch/go-porterstemmer"

	"github.com/hea-health/risk-engine/internal/input"
	"github.com/hea-health/risk-engine/internal/risk"
)

// Candidate strengths for the different narrative detections.
const (
	criticalPhraseStrength = 0.8
	symptomTermStrength    = 0.6
	notableTermStrength    = 0.5
	persistenceStrength    = 0.4
	emojiStrength          = 0.3
	criticalCheckStrength  = 0.7
	notableCheckStrength   = 0.4
)

// criticalPhrases are multi-word high-concern phrases matched verbatim
// against the lowered narrative. Each maps to a symptom group key so
// correlated phrasings merge during fusion.
var criticalPhrases = map[string]struct {
	key  string
	desc string
}{
	"chest pain":           {"cardiovascular", "Your description mentions chest pain"},
	"heart palpitations":   {"cardiovascular", "Your description mentions heart palpitations"},
	"shortness of breath":  {"respiratory", "Your description mentions shortness of breath"},
	"difficulty breathing": {"respiratory", "Your description mentions difficulty breathing"},
	"severe headache":      {"neurological", "Your description mentions a severe headache"},
	"vision loss":          {"neurological", "Your description mentions vision changes"},
	"numbness":             {"neurological", "Your description mentions numbness"},
	"confusion":            {"neurological", "Your description mentions confusion"},
	"fainting":             {"neurological", "Your description mentions fainting"},
	"blood":                {"bleeding", "Your description mentions blood"},
}

// symptomTerm maps a stemmed narrative token to a symptom group.
type symptomTerm struct {
	key      string
	desc     string
	strength float64
}

// rawSymptomTerms is the un-stemmed symptom lexicon; it is stemmed once
// at package init so lookups match stemmed narrative tokens.
var rawSymptomTerms = map[string]symptomTerm{
	"tired":     {"fatigue", "You mentioned feeling tired or low on energy", symptomTermStrength},
	"exhausted": {"fatigue", "You mentioned feeling tired or low on energy", symptomTermStrength},
	"drained":   {"fatigue", "You mentioned feeling tired or low on energy", symptomTermStrength},
	"fatigued":  {"fatigue", "You mentioned feeling tired or low on energy", symptomTermStrength},
	"weary":     {"fatigue", "You mentioned feeling tired or low on energy", symptomTermStrength},
	"pain":      {"pain", "Pain-related language was noticed in your description", notableTermStrength},
	"aching":    {"pain", "Pain-related language was noticed in your description", notableTermStrength},
	"headache":  {"neurological", "You mentioned a headache", notableTermStrength},
	"sad":       {"mood", "Your description suggests a lower mood than usual", notableTermStrength},
	"depressed": {"mood", "Your description suggests a lower mood than usual", notableTermStrength},
	"anxious":   {"mood", "Your description suggests you may be feeling anxious", notableTermStrength},
	"anxiety":   {"mood", "Your description suggests you may be feeling anxious", notableTermStrength},
	"insomnia":  {"sleep", "Sleep disruption language was noticed in your description", notableTermStrength},
	"sleepless": {"sleep", "Sleep disruption language was noticed in your description", notableTermStrength},
	"nausea":    {"digestive", "Stomach or digestive concerns were noticed", notableTermStrength},
	"nauseous":  {"digestive", "Stomach or digestive concerns were noticed", notableTermStrength},
	"vomiting":  {"digestive", "Stomach or digestive concerns were noticed", notableTermStrength},
	"dizzy":     {"neurological", "You mentioned feeling dizzy", notableTermStrength},
	"dizziness": {"neurological", "You mentioned feeling dizzy", notableTermStrength},
	"fever":     {"fever", "You mentioned a fever", notableTermStrength},
}

var stemmedSymptomTerms = buildStemmedTerms()

func buildStemmedTerms() map[string]symptomTerm {
	out := make(map[string]symptomTerm, len(rawSymptomTerms))
	for word, term := range rawSymptomTerms {
		out[porterstemmer.StemString(word)] = term
	}
	return out
}

// persistencePhrases indicate recurring or worsening symptoms.
var persistencePhrases = []string{
	"every day",
	"keeps happening",
	"won't go away",
	"for weeks",
	"getting worse",
	"all the time",
}

// negativeEmojiTokens are the descriptive emoji tokens treated as
// negative health indicators.
var negativeEmojiTokens = []string{
	"nauseated face",
	"face with thermometer",
	"sneezing face",
	"dizzy",
	"anxious face",
	"crying face",
	"tired face",
	"sleeping face",
	"confounded face",
	"weary face",
}

// Checkbox symptom keys, split by concern level. Keys intentionally
// coincide with narrative group keys so a ticked box and matching text
// merge into one signal.
var (
	criticalCheckboxes = map[string]string{
		"chest_pain":          "cardiovascular",
		"heart_palpitations":  "cardiovascular",
		"shortness_of_breath": "respiratory",
	}
	notableCheckboxes = map[string]string{
		"headache":  "neurological",
		"fatigue":   "fatigue",
		"insomnia":  "sleep",
		"anxiety":   "mood",
		"dizziness": "neurological",
	}
)

// NLPExtractor detects weak symptom signals in the free-text narrative,
// emoji tokens, and checkbox selections. It is a rule-based stand-in
// for the trained text model and honours the same output contract.
type NLPExtractor struct{}

// NewNLPExtractor creates the narrative extractor.
func NewNLPExtractor() *NLPExtractor { return &NLPExtractor{} }

// Name implements Source.
func (e *NLPExtractor) Name() string { return "nlp" }

// Extract implements Source.
func (e *NLPExtractor) Extract(ctx context.Context, in *input.DailyInput, _ BaselineContext) ([]Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []Candidate
	text := strings.ToLower(in.SymptomText)

	if text != "" {
		for phrase, info := range criticalPhrases {
			if strings.Contains(text, phrase) {
				out = append(out, e.candidate(info.key, info.desc, criticalPhraseStrength))
			}
		}
		for _, token := range strings.Fields(text) {
			token = strings.Trim(token, ".,!?;:'\"()")
			if token == "" {
				continue
			}
			if term, ok := stemmedSymptomTerms[porterstemmer.StemString(token)]; ok {
				out = append(out, e.candidate(term.key, term.desc, term.strength))
			}
		}
		for _, phrase := range persistencePhrases {
			if strings.Contains(text, phrase) {
				out = append(out, e.candidate("persistence",
					"You described symptoms as persistent or worsening", persistenceStrength))
			}
		}
	}

	for _, emoji := range in.EmojiInputs {
		lowered := strings.ToLower(emoji)
		for _, neg := range negativeEmojiTokens {
			if strings.Contains(lowered, neg) {
				out = append(out, e.candidate("negative_emoji",
					"Your emoji check-in leaned negative today", emojiStrength))
				break
			}
		}
	}

	for _, box := range in.CheckboxSelections {
		if key, ok := criticalCheckboxes[box]; ok {
			out = append(out, e.candidate(key,
				"You flagged "+strings.ReplaceAll(box, "_", " ")+" as a symptom", criticalCheckStrength))
		} else if key, ok := notableCheckboxes[box]; ok {
			out = append(out, e.candidate(key,
				"You flagged "+strings.ReplaceAll(box, "_", " ")+" as a symptom", notableCheckStrength))
		}
	}

	return out, nil
}

func (e *NLPExtractor) candidate(key, desc string, strength float64) Candidate {
	return Candidate{
		Category:    risk.CategoryNLP,
		Key:         key,
		Description: desc,
		Strength:    strength,
		Source:      e.Name(),
	}
}
