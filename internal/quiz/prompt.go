package quiz

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
)

// Prompt is the instruction/content pair sent to the completion service.
type Prompt struct {
	Instruction string
	Content     string
}

const lineRules = `Write each object on its own line. Do not number the lines, do not wrap them in an array, do not add any commentary and do not use code fences.`

var generationTemplates = map[Category]*template.Template{
	MultiChoice: template.Must(template.New("multi-choice").Parse(
		`Generate a {{.Count}}-question long multiple-choice quiz based on the text provided by the user.
Every question has exactly four options and exactly one of them is correct. The correct answer must be copied verbatim from the options.
Output exactly {{.Count}} JSON objects of the form:
{"question":"","options":["","","",""],"correct_answer":""}
` + lineRules)),

	FillGaps: template.Must(template.New("fill-gaps").Parse(
		`Give me exactly {{.Count}} facts about the text provided by the user.
Each fact is one self-contained sentence that states something specific, such as a name, a place, a number or a term.
Output exactly {{.Count}} JSON objects of the form:
{"fact":""}
` + lineRules)),

	ShortAnswer: template.Must(template.New("short-answer").Parse(
		`Generate a {{.Count}}-question long short answer quiz based on the text provided by the user.
Each question must be answerable in one or two sentences.
Output exactly {{.Count}} JSON objects of the form:
{"question":""}
` + lineRules)),
}

const refineInstruction = `Using the fact provided by the user, create a list of four words or short phrases for a fill-in-the-blank question.
Exactly one of the four must be copied verbatim from the fact; it is the correct answer. The other three are plausible distractors that do not appear in the fact.
Respond with a single JSON object of the form:
{"options":["","","",""],"correct_answer":""}
Do not add any commentary and do not use code fences.`

var judgeInstructions = map[Category]string{
	MultiChoice: `You are an answer-checking assistant for a multiple-choice quiz.
The user sends a JSON array of answers that are already known to be wrong. For each answer write one or two sentences of feedback explaining why the chosen option is wrong and why the correct answer is right.
Do not change the verdict and do not grade the answers again.
Respond with a JSON array containing one object per answer, of the form:
{"question_id":0,"feedback":""}
Do not add any commentary and do not use code fences.`,

	FillGaps: `You are an answer-checking assistant for a fill-in-the-gaps quiz.
The user sends a JSON array of answers that are already known to be wrong. For each answer write one or two sentences of feedback explaining why the chosen word does not fit the gap and why the correct answer does.
Do not change the verdict and do not grade the answers again.
Respond with a JSON array containing one object per answer, of the form:
{"question_id":0,"feedback":""}
Do not add any commentary and do not use code fences.`,

	ShortAnswer: `You are a lenient answer-checking assistant for an open-question quiz.
The user sends a JSON array of questions with the learner's answers. Grade on understanding rather than exact wording: an answer that shows the right idea is correct even if it is incomplete or informal.
For each answer decide is_correct. Set correct_answer to a model answer when the learner is wrong, or to the learner's own answer when they are right. Add one or two sentences of feedback.
Respond with a JSON array containing one object per answer, of the form:
{"question_id":0,"is_correct":true,"correct_answer":"","feedback":""}
Do not add any commentary and do not use code fences.`,
}

// BuildPrompt returns the generation prompt asking for count questions of
// category c about source.
func BuildPrompt(c Category, count int, source string) (Prompt, error) {
	tmpl, ok := generationTemplates[c]
	if !ok {
		return Prompt{}, fmt.Errorf("%w: unknown question type %q", ErrInvalidArgument, c)
	}
	if count < 1 {
		return Prompt{}, fmt.Errorf("%w: question count must be at least 1, got %d", ErrInvalidArgument, count)
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, struct{ Count int }{count}); err != nil {
		return Prompt{}, fmt.Errorf("render %s prompt: %w", c, err)
	}
	return Prompt{Instruction: b.String(), Content: source}, nil
}

func refinePrompt(fact string) Prompt {
	return Prompt{Instruction: refineInstruction, Content: "The fact: " + fact}
}

// judgeAnswer is what the judge sees for one answer.
type judgeAnswer struct {
	QuestionID    int      `json:"question_id"`
	Question      string   `json:"question"`
	UserAnswer    string   `json:"user_answer"`
	CorrectAnswer string   `json:"correct_answer,omitempty"`
	Options       []string `json:"options,omitempty"`
}

func judgePrompt(c Category, answers []SubmittedAnswer) (Prompt, error) {
	instr, ok := judgeInstructions[c]
	if !ok {
		return Prompt{}, fmt.Errorf("%w: unknown question type %q", ErrInvalidArgument, c)
	}

	items := make([]judgeAnswer, len(answers))
	for i, a := range answers {
		items[i] = judgeAnswer{
			QuestionID:    a.QuestionID,
			Question:      a.QuestionText,
			UserAnswer:    a.UserAnswer,
			CorrectAnswer: a.CorrectAnswer,
		}
		if c == MultiChoice {
			items[i].Options = a.Options
		}
	}
	body, err := json.Marshal(items)
	if err != nil {
		return Prompt{}, fmt.Errorf("encode answers: %w", err)
	}
	return Prompt{Instruction: instr, Content: string(body)}, nil
}
