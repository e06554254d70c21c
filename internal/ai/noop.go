package ai

import "context"

type noopProvider struct{}

func init() {
	Register("noop", func(args interface{}) (IProvider, error) {
		return &noopProvider{}, nil
	})
}

func (p *noopProvider) Name() string {
	return "noop"
}

func (p *noopProvider) Generate(ctx context.Context, model string, prompt string) (string, error) {
	return "", ErrUnavailable
}
