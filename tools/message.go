package tools

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// NotifyUser delivers progress messages to the user. It is the one
// capability the controller assumes is always registered.
type NotifyUser struct {
	mu  sync.Mutex
	out io.Writer
}

// NewNotifyUser creates a notifier writing to out.
func NewNotifyUser(out io.Writer) *NotifyUser {
	return &NotifyUser{out: out}
}

// Invoke writes the message argument to the output stream.
func (n *NotifyUser) Invoke(_ context.Context, arguments map[string]any) (string, error) {
	message, _ := arguments["message"].(string)
	if message == "" {
		// Older prompt conventions call this argument "text".
		message, _ = arguments["text"].(string)
	}
	if message == "" {
		return "", fmt.Errorf("message_notify_user: missing message argument")
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if _, err := fmt.Fprintf(n.out, "[agent] %s\n", message); err != nil {
		return "", fmt.Errorf("message_notify_user: %w", err)
	}
	return "message delivered", nil
}

// AskUser poses a question and blocks for a line of input. Intended for
// interactive terminal sessions; a closed input stream fails the call.
type AskUser struct {
	mu  sync.Mutex
	out io.Writer
	in  *bufio.Reader
}

// NewAskUser creates an asker over the given streams.
func NewAskUser(out io.Writer, in io.Reader) *AskUser {
	return &AskUser{out: out, in: bufio.NewReader(in)}
}

// Invoke prints the question and returns the user's reply.
func (a *AskUser) Invoke(ctx context.Context, arguments map[string]any) (string, error) {
	question, _ := arguments["text"].(string)
	if question == "" {
		question, _ = arguments["message"].(string)
	}
	if question == "" {
		return "", fmt.Errorf("message_ask_user: missing text argument")
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	fmt.Fprintf(a.out, "[agent asks] %s\n> ", question)

	type lineResult struct {
		line string
		err  error
	}
	ch := make(chan lineResult, 1)
	go func() {
		line, err := a.in.ReadString('\n')
		ch <- lineResult{line: line, err: err}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			return "", fmt.Errorf("message_ask_user: read reply: %w", res.err)
		}
		return strings.TrimSpace(res.line), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
