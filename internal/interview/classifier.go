package interview

import "strings"

// Classification is the verdict of a [Classifier] on one generated
// interviewer utterance.
type Classification struct {
	// OpensTopic reports that the utterance introduces a new main subject
	// area rather than a clarifying follow-up.
	OpensTopic bool

	// ClosesInterview reports that the utterance reads as a farewell,
	// evidence the model intends to end the interview.
	ClosesInterview bool
}

// Classifier decides how a generated interviewer utterance moves the
// interview forward. The default is [PhraseClassifier]; implementations can
// replace the heuristic without touching the state machine.
type Classifier interface {
	Classify(utterance string) Classification
}

// topicIndicators are phrasings that request a narrative or opinion, as
// opposed to a clarifying follow-up. An utterance must also contain a
// question mark to count as opening a topic.
var topicIndicators = []string{
	"tell me about",
	"can you describe",
	"what experience",
	"how would you",
	"walk me through",
	"what's your approach",
	"have you ever",
	"what do you think",
}

// closingPhrases are valedictory patterns taken as evidence the interviewer
// is wrapping up.
var closingPhrases = []string{
	"thank you for your time",
	"thank you for speaking",
	"best of luck",
	"pleasure speaking",
	"great talking",
	"enjoyed our conversation",
	"we'll be in touch",
}

// PhraseClassifier classifies utterances by fixed lexical patterns. It is a
// pragmatic proxy for dialogue structure, accepting false negatives (an
// interview runs long) over false positives (premature termination).
type PhraseClassifier struct {
	topicIndicators []string
	closingPhrases  []string
}

// NewPhraseClassifier returns a classifier with the default phrase sets.
func NewPhraseClassifier() *PhraseClassifier {
	return &PhraseClassifier{
		topicIndicators: topicIndicators,
		closingPhrases:  closingPhrases,
	}
}

func (c *PhraseClassifier) Classify(utterance string) Classification {
	lower := strings.ToLower(utterance)

	var verdict Classification
	if strings.Contains(utterance, "?") {
		for _, ind := range c.topicIndicators {
			if strings.Contains(lower, ind) {
				verdict.OpensTopic = true
				break
			}
		}
	}
	for _, phrase := range c.closingPhrases {
		if strings.Contains(lower, phrase) {
			verdict.ClosesInterview = true
			break
		}
	}
	return verdict
}
