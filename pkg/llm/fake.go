package llm

import "context"

// FakeProvider is an in-process Provider that returns canned text or a
// canned error, for agent and gateway tests. Matches §9's "tests construct
// a Gateway with an in-process fake that returns canned text."
type FakeProvider struct {
	Text  string
	Err   error
	Calls int
}

func (f *FakeProvider) Name() string { return "fake" }

func (f *FakeProvider) Generate(ctx context.Context, model, systemPrompt, prompt string, temperature float64, maxTokens int) (string, error) {
	f.Calls++
	if f.Err != nil {
		return "", f.Err
	}
	return f.Text, nil
}
