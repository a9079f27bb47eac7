package quiz

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/abhisek/quizforge/internal/logging"
)

// Per-category fragment shapes as the completion service writes them.
// They are normalized into Question or verdict right after decoding.
type (
	choiceFragment struct {
		Question      string   `json:"question"`
		Options       []string `json:"options"`
		CorrectAnswer string   `json:"correct_answer"`
	}

	factFragment struct {
		Fact     string `json:"fact"`
		Question string `json:"question"`
	}

	openFragment struct {
		Question string `json:"question"`
	}

	refinement struct {
		Options       []string `json:"options"`
		CorrectAnswer string   `json:"correct_answer"`
	}

	verdict struct {
		QuestionID    flexInt   `json:"question_id"`
		IsCorrect     *flexBool `json:"is_correct"`
		CorrectAnswer *string   `json:"correct_answer"`
		Feedback      *string   `json:"feedback"`
	}
)

var fragmentSchemas = map[Category]string{
	MultiChoice: "choice",
	FillGaps:    "fact",
	ShortAnswer: "open",
}

// ParseQuestions extracts the question records of category c from a raw
// completion. Malformed fragments are logged and dropped, so the result
// may be shorter than requested. IDs are left at zero.
func ParseQuestions(raw string, c Category, log *logging.Logger) []Question {
	frags, leftovers := splitFragments(raw)
	logLeftovers(log, c, leftovers)

	out := make([]Question, 0, len(frags))
	for _, frag := range frags {
		q, err := decodeQuestion(frag, c)
		if err != nil {
			log.Warn("dropping malformed fragment", "category", c, "error", err, "raw", frag)
			continue
		}
		out = append(out, q)
	}
	return out
}

func decodeQuestion(frag string, c Category) (Question, error) {
	name, ok := fragmentSchemas[c]
	if !ok {
		return Question{}, fmt.Errorf("unknown question type %q", c)
	}
	if err := validateFragment(name, frag); err != nil {
		return Question{}, err
	}

	q := Question{Category: c, Options: []string{}}
	switch c {
	case MultiChoice:
		var f choiceFragment
		if err := json.Unmarshal([]byte(frag), &f); err != nil {
			return Question{}, err
		}
		opts := cleanOptions(f.Options)
		answer, ok := matchOption(opts, f.CorrectAnswer)
		if !ok {
			return Question{}, fmt.Errorf("correct answer %q is not one of the options", f.CorrectAnswer)
		}
		q.Text, q.Options, q.CorrectAnswer = strings.TrimSpace(f.Question), opts, answer

	case FillGaps:
		var f factFragment
		if err := json.Unmarshal([]byte(frag), &f); err != nil {
			return Question{}, err
		}
		q.Text = strings.TrimSpace(f.Fact)
		if q.Text == "" {
			q.Text = strings.TrimSpace(f.Question)
		}

	case ShortAnswer:
		var f openFragment
		if err := json.Unmarshal([]byte(frag), &f); err != nil {
			return Question{}, err
		}
		q.Text = strings.TrimSpace(f.Question)
	}

	if q.Text == "" {
		return Question{}, fmt.Errorf("blank question text")
	}
	return q, nil
}

// parseRefinement returns the first valid refinement object in raw.
func parseRefinement(raw string) (refinement, error) {
	frags, _ := splitFragments(raw)
	var lastErr error = ErrNoFragments
	for _, frag := range frags {
		if err := validateFragment("refinement", frag); err != nil {
			lastErr = err
			continue
		}
		var r refinement
		if err := json.Unmarshal([]byte(frag), &r); err != nil {
			lastErr = err
			continue
		}
		return r, nil
	}
	return refinement{}, lastErr
}

// parseVerdicts extracts judge verdicts. Invalid entries are logged and
// dropped; callers decide whether a missing verdict is fatal.
func parseVerdicts(raw string, c Category, log *logging.Logger) []verdict {
	frags, leftovers := splitFragments(raw)
	logLeftovers(log, c, leftovers)

	out := make([]verdict, 0, len(frags))
	for _, frag := range frags {
		if err := validateFragment("verdict", frag); err != nil {
			log.Warn("dropping malformed verdict", "category", c, "error", err, "raw", frag)
			continue
		}
		var v verdict
		if err := json.Unmarshal([]byte(frag), &v); err != nil {
			log.Warn("dropping malformed verdict", "category", c, "error", err, "raw", frag)
			continue
		}
		out = append(out, v)
	}
	return out
}

func logLeftovers(log *logging.Logger, c Category, leftovers []string) {
	for _, l := range leftovers {
		log.Warn("ignoring text outside any fragment", "category", c, "raw", l)
	}
}

// splitFragments cuts a completion into candidate JSON object texts in
// the order they appear. Text that belongs to no object is returned as
// leftovers.
func splitFragments(raw string) (frags, leftovers []string) {
	text := strings.TrimSpace(stripFences(raw))
	if text == "" {
		return nil, nil
	}

	if strings.HasPrefix(text, "[") {
		var elems []json.RawMessage
		if err := json.Unmarshal([]byte(text), &elems); err == nil {
			for _, e := range elems {
				frags = append(frags, string(e))
			}
			return frags, nil
		}
		// Truncated or broken array: fall back to line and brace scanning.
		text = strings.TrimPrefix(text, "[")
	}

	var pending strings.Builder
	flush := func() {
		f, l := scanObjects(pending.String())
		frags = append(frags, f...)
		leftovers = append(leftovers, l...)
		pending.Reset()
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimRight(strings.TrimSpace(line), ",")
		if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
			flush()
			if !json.Valid([]byte(trimmed)) {
				// Several objects on one line split cleanly; a single
				// broken object is kept whole so it is reported.
				if objs, rest := scanObjects(trimmed); len(objs) > 1 {
					frags = append(frags, objs...)
					leftovers = append(leftovers, rest...)
					continue
				}
			}
			frags = append(frags, trimmed)
			continue
		}
		pending.WriteString(line)
		pending.WriteByte('\n')
	}
	flush()
	return frags, leftovers
}

// stripFences removes markdown code-fence markers such as ```json and ```
// and keeps whatever else shares their line.
func stripFences(raw string) string {
	if !strings.Contains(raw, "```") {
		return raw
	}
	lines := strings.Split(raw, "\n")
	for i, l := range lines {
		t := strings.TrimSpace(l)
		fenced := false
		if rest, ok := strings.CutPrefix(t, "```"); ok {
			t, fenced = strings.TrimLeftFunc(rest, isFenceTag), true
		}
		if rest, ok := strings.CutSuffix(t, "```"); ok {
			t, fenced = rest, true
		}
		if fenced {
			lines[i] = t
		}
	}
	return strings.Join(lines, "\n")
}

// isFenceTag reports whether r can be part of a fence language tag.
func isFenceTag(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '+'
}

// scanObjects finds top-level balanced {...} spans, skipping braces inside
// JSON strings. An unterminated trailing object is returned as a leftover.
func scanObjects(text string) (objs, leftovers []string) {
	depth, start := 0, -1
	inString, escaped := false, false
	last := 0

	for i := 0; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				if gap := meaningful(text[last:i]); gap != "" {
					leftovers = append(leftovers, gap)
				}
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				objs = append(objs, text[start:i+1])
				last = i + 1
				start = -1
			}
		}
	}

	if start >= 0 {
		leftovers = append(leftovers, strings.TrimSpace(text[start:]))
	} else if gap := meaningful(text[last:]); gap != "" {
		leftovers = append(leftovers, gap)
	}
	return objs, leftovers
}

// meaningful trims separators that carry no content between fragments.
func meaningful(s string) string {
	return strings.Trim(s, " \t\r\n,[]")
}

// cleanOptions trims options and removes blanks.
func cleanOptions(opts []string) []string {
	out := make([]string, 0, len(opts))
	for _, o := range opts {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// matchOption finds answer among opts ignoring case and surrounding
// space, returning the option's own spelling.
func matchOption(opts []string, answer string) (string, bool) {
	answer = strings.TrimSpace(answer)
	for _, o := range opts {
		if strings.EqualFold(o, answer) {
			return o, true
		}
	}
	return "", false
}

// flexInt decodes an integer that may arrive as a JSON string.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("question_id %s: %w", b, err)
	}
	*f = flexInt(n)
	return nil
}

// flexBool decodes a boolean that may arrive as a word.
type flexBool bool

func (f *flexBool) UnmarshalJSON(b []byte) error {
	s := strings.ToLower(strings.Trim(strings.TrimSpace(string(b)), `"`))
	switch strings.TrimSpace(s) {
	case "true", "correct", "yes":
		*f = true
	case "false", "incorrect", "no":
		*f = false
	default:
		return fmt.Errorf("is_correct %s: not a boolean", b)
	}
	return nil
}
