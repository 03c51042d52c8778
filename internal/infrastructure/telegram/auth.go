package telegram

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
)

// consoleAuthenticator implements auth.UserAuthenticator using stdin for
// the verification code and 2FA password prompts
type consoleAuthenticator struct {
	phone string
}

// Phone returns the configured phone number
func (a *consoleAuthenticator) Phone(_ context.Context) (string, error) {
	return a.phone, nil
}

// Code prompts user for authentication code via console with timeout
func (a *consoleAuthenticator) Code(ctx context.Context, _ *tg.AuthSentCode) (string, error) {
	return promptLine(ctx, "Enter authentication code: ")
}

// Password prompts user for 2FA password via console with timeout
func (a *consoleAuthenticator) Password(ctx context.Context) (string, error) {
	return promptLine(ctx, "Enter 2FA password: ")
}

// AcceptTermsOfService accepts the terms silently
func (a *consoleAuthenticator) AcceptTermsOfService(_ context.Context, _ tg.HelpTermsOfService) error {
	return nil
}

// SignUp is rejected: the account must already exist
func (a *consoleAuthenticator) SignUp(_ context.Context) (auth.UserInfo, error) {
	return auth.UserInfo{}, fmt.Errorf("sign up is not supported, register the account first")
}

// promptLine reads one trimmed line from stdin with cancellation and a
// 2-minute input timeout
func promptLine(ctx context.Context, prompt string) (string, error) {
	fmt.Print(prompt)

	lineChan := make(chan string, 1)
	errChan := make(chan error, 1)

	go func() {
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			errChan <- fmt.Errorf("failed to read input: %w", err)
			return
		}
		lineChan <- strings.TrimSpace(line)
	}()

	select {
	case line := <-lineChan:
		return line, nil
	case err := <-errChan:
		return "", err
	case <-ctx.Done():
		return "", fmt.Errorf("input cancelled: %w", ctx.Err())
	case <-time.After(2 * time.Minute):
		return "", fmt.Errorf("input timeout")
	}
}

var _ auth.UserAuthenticator = (*consoleAuthenticator)(nil)
