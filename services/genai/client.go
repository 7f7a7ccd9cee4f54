package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/trezcool/smartlearn/core"
	"github.com/trezcool/smartlearn/core/classroom"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	defaultModel   = "gemini-2.5-flash"

	// DisabledMessage stands in for generated text when no API key is configured.
	DisabledMessage = "AI functionality is disabled. Please configure the Gemini API key."
)

var (
	ErrDisabled = errors.New(DisabledMessage)
	ErrFailed   = errors.New("failed to generate content from AI")
)

type Client struct {
	apiKey  string
	model   string
	baseURL string
	logger  core.Logger
	send    func(ctx context.Context, req rest.Request) (*rest.Response, error)
}

var _ classroom.ContentGenerator = (*Client)(nil)

func NewClient(conf core.GenAIConfig, logger core.Logger) *Client {
	if conf.APIKey == "" {
		logger.Warn("Gemini API key not found. AI features will be disabled.")
	}
	c := &Client{
		apiKey:  conf.APIKey,
		model:   conf.Model,
		baseURL: strings.TrimRight(conf.BaseURL, "/"),
		logger:  logger,
		send:    rest.SendWithContext,
	}
	if c.model == "" {
		c.model = defaultModel
	}
	if c.baseURL == "" {
		c.baseURL = defaultBaseURL
	}
	return c
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool { return c.apiKey != "" }

type (
	part struct {
		Text string `json:"text"`
	}

	content struct {
		Role  string `json:"role,omitempty"`
		Parts []part `json:"parts"`
	}

	generationConfig struct {
		ResponseMimeType string      `json:"responseMimeType,omitempty"`
		ResponseSchema   interface{} `json:"responseSchema,omitempty"`
	}

	generateRequest struct {
		Contents         []content         `json:"contents"`
		GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
	}

	generateResponse struct {
		Candidates []struct {
			Content content `json:"content"`
		} `json:"candidates"`
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error,omitempty"`
	}
)

func (r generateResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

func (c *Client) generate(ctx context.Context, prompt string, cfg *generationConfig) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents:         []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: cfg,
	})
	if err != nil {
		return "", errors.Wrap(err, "encoding request")
	}

	res, err := c.send(ctx, rest.Request{
		Method:  rest.Post,
		BaseURL: fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model),
		Headers: map[string]string{
			"Content-Type":   "application/json",
			"x-goog-api-key": c.apiKey,
		},
		Body: body,
	})
	if err != nil {
		c.logger.Error("calling Gemini API", err)
		return "", errors.Wrap(ErrFailed, err.Error())
	}

	var gr generateResponse
	if err = json.Unmarshal([]byte(res.Body), &gr); err != nil && res.StatusCode < http.StatusBadRequest {
		c.logger.Error("decoding Gemini response", err)
		return "", errors.Wrap(ErrFailed, "decoding response")
	}
	if res.StatusCode >= http.StatusBadRequest {
		msg := fmt.Sprintf("status %d", res.StatusCode)
		if gr.Error != nil {
			msg += ": " + gr.Error.Message
		}
		c.logger.Error("Gemini API error", map[string]interface{}{"status": res.StatusCode, "body": res.Body})
		return "", errors.Wrap(ErrFailed, msg)
	}
	return gr.text(), nil
}

// freeText returns DisabledMessage without calling out when no key is set.
func (c *Client) freeText(ctx context.Context, prompt string) (string, error) {
	if !c.Enabled() {
		return DisabledMessage, nil
	}
	return c.generate(ctx, prompt, nil)
}

func (c *Client) GenerateCourseDescription(ctx context.Context, courseTitle string) (string, error) {
	return c.freeText(ctx, fmt.Sprintf(courseDescriptionPrompt, courseTitle))
}

func (c *Client) GenerateAssignmentFeedback(ctx context.Context, assignmentTitle, submission string) (string, error) {
	return c.freeText(ctx, fmt.Sprintf(assignmentFeedbackPrompt, assignmentTitle, submission))
}

func (c *Client) GenerateVideoTranscript(ctx context.Context, videoTitle string) (string, error) {
	return c.freeText(ctx, fmt.Sprintf(videoTranscriptPrompt, videoTitle))
}

// AnswerVideoQuestion answers from the transcript only. Answers start with a [MM:SS] citation.
func (c *Client) AnswerVideoQuestion(ctx context.Context, transcript, question string) (string, error) {
	return c.freeText(ctx, fmt.Sprintf(videoQuestionPrompt, transcript, question))
}

type generatedQuestion struct {
	Text          string   `json:"text"`
	Type          string   `json:"type"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

var questionSchema = map[string]interface{}{
	"type": "ARRAY",
	"items": map[string]interface{}{
		"type": "OBJECT",
		"properties": map[string]interface{}{
			"text": map[string]interface{}{"type": "STRING", "description": "The question text."},
			"type": map[string]interface{}{
				"type":        "STRING",
				"enum":        []string{string(classroom.MultipleChoice), string(classroom.TrueFalse)},
				"description": "The type of question.",
			},
			"options": map[string]interface{}{
				"type":        "ARRAY",
				"items":       map[string]interface{}{"type": "STRING"},
				"description": "An array of 4 possible answers for multiple-choice questions.",
			},
			"correctAnswer": map[string]interface{}{
				"type":        "STRING",
				"description": `The correct answer. For multiple-choice, this must be one of the options. For true/false, it must be "True" or "False".`,
			},
		},
		"required": []string{"text", "type", "correctAnswer"},
	},
}

// GenerateQuizQuestions drafts questions from course material.
// Entries missing text, type or answer, or with an unknown type, are dropped.
func (c *Client) GenerateQuizQuestions(ctx context.Context, material string) ([]classroom.Question, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}
	text, err := c.generate(ctx, fmt.Sprintf(quizQuestionsPrompt, material), &generationConfig{
		ResponseMimeType: "application/json",
		ResponseSchema:   questionSchema,
	})
	if err != nil {
		return nil, err
	}

	var generated []generatedQuestion
	if err = json.Unmarshal([]byte(strings.TrimSpace(text)), &generated); err != nil {
		c.logger.Error("decoding generated questions", err, map[string]interface{}{"text": text})
		return nil, errors.Wrap(ErrFailed, "AI did not return an array of questions")
	}

	questions := make([]classroom.Question, 0, len(generated))
	for _, g := range generated {
		qt := classroom.QuestionType(g.Type)
		if g.Text == "" || g.CorrectAnswer == "" || (qt != classroom.MultipleChoice && qt != classroom.TrueFalse) {
			continue
		}
		questions = append(questions, classroom.Question{
			Text:          g.Text,
			Type:          qt,
			Options:       g.Options,
			CorrectAnswer: g.CorrectAnswer,
		})
	}
	return questions, nil
}
