package quiz

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/abhisek/quizforge/internal/llm"
)

// fakeClient answers prompts through a routing function and records calls.
type fakeClient struct {
	route func(instruction, content string) (string, error)

	mu    sync.Mutex
	calls []fakeCall
}

type fakeCall struct {
	Purpose     string
	Instruction string
	Content     string
}

func (f *fakeClient) Complete(ctx context.Context, instruction, content string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, fakeCall{Purpose: llm.PurposeFrom(ctx), Instruction: instruction, Content: content})
	f.mu.Unlock()
	return f.route(instruction, content)
}

func (f *fakeClient) callsFor(purpose string) []fakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []fakeCall
	for _, c := range f.calls {
		if c.Purpose == purpose {
			out = append(out, c)
		}
	}
	return out
}

// promptKind names the prompt an instruction belongs to.
func promptKind(instruction string) string {
	switch {
	case strings.Contains(instruction, "answer-checking assistant"):
		switch {
		case strings.Contains(instruction, "multiple-choice quiz"):
			return "judge-mc"
		case strings.Contains(instruction, "fill-in-the-gaps quiz"):
			return "judge-fill"
		default:
			return "judge-open"
		}
	case strings.Contains(instruction, "fill-in-the-blank question"):
		return "refine"
	case strings.Contains(instruction, "multiple-choice quiz based on"):
		return "gen-mc"
	case strings.Contains(instruction, "facts about"):
		return "gen-fill"
	case strings.Contains(instruction, "short answer quiz"):
		return "gen-open"
	}
	return "unknown"
}

var firstNumber = regexp.MustCompile(`\d+`)

// requestedCount reads the question count stated in a generation prompt.
func requestedCount(instruction string) int {
	n, _ := strconv.Atoi(firstNumber.FindString(instruction))
	return n
}

func mcLines(n int) string {
	var b strings.Builder
	for i := range n {
		fmt.Fprintf(&b, `{"question":"Which number is %d?","options":["%d","x","y","z"],"correct_answer":"%d"}`+"\n", i, i, i)
	}
	return b.String()
}

func factLines(n int) string {
	var b strings.Builder
	for i := range n {
		fmt.Fprintf(&b, `{"fact":"Gadget %d was patented in %d."}`+"\n", i, 1900+i)
	}
	return b.String()
}

func openLines(n int) string {
	var b strings.Builder
	for i := range n {
		fmt.Fprintf(&b, `{"question":"Explain idea %d."}`+"\n", i)
	}
	return b.String()
}

var patentYear = regexp.MustCompile(`(\d{4})\.$`)

// refineFor builds a valid refinement for facts made by factLines.
func refineFor(content string) (string, error) {
	m := patentYear.FindStringSubmatch(content)
	if m == nil {
		return "", fmt.Errorf("unexpected fact %q", content)
	}
	return fmt.Sprintf(`{"options":["%s","1066","1492","1815"],"correct_answer":"%s"}`, m[1], m[1]), nil
}

// happyRoute serves every prompt with well-formed output.
func happyRoute(instruction, content string) (string, error) {
	switch promptKind(instruction) {
	case "gen-mc":
		return mcLines(requestedCount(instruction)), nil
	case "gen-fill":
		return factLines(requestedCount(instruction)), nil
	case "gen-open":
		return openLines(requestedCount(instruction)), nil
	case "refine":
		return refineFor(content)
	case "judge-mc", "judge-fill":
		return feedbackFor(content)
	case "judge-open":
		return lenientVerdicts(content)
	}
	return "", fmt.Errorf("unroutable prompt")
}

// feedbackFor answers a feedback-only judge prompt.
func feedbackFor(content string) (string, error) {
	var items []judgeAnswer
	if err := json.Unmarshal([]byte(content), &items); err != nil {
		return "", err
	}
	var b strings.Builder
	for _, it := range items {
		fmt.Fprintf(&b, `{"question_id":%d,"feedback":"feedback for %d"}`+"\n", it.QuestionID, it.QuestionID)
	}
	return b.String(), nil
}

// lenientVerdicts marks an open answer correct when it mentions "right".
func lenientVerdicts(content string) (string, error) {
	var items []judgeAnswer
	if err := json.Unmarshal([]byte(content), &items); err != nil {
		return "", err
	}
	out := make([]map[string]any, len(items))
	for i, it := range items {
		ok := strings.Contains(it.UserAnswer, "right")
		v := map[string]any{"question_id": it.QuestionID, "is_correct": ok, "feedback": "noted"}
		if !ok {
			v["correct_answer"] = "model answer"
		}
		out[i] = v
	}
	body, err := json.Marshal(out)
	return string(body), err
}
