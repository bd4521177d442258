package webviewauth

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"
)

// ManualInputConfig controls GetTokenViaManualInput.
type ManualInputConfig struct {
	// Prompt printed before reading the redirected URL.
	// Default to DefaultManualInputPrompt.
	Prompt string
	// In is where the redirected URL is read from. Default to os.Stdin.
	In io.Reader
	// Out is where the instructions are printed. Default to os.Stderr.
	Out io.Writer
}

// DefaultManualInputPrompt is the default prompt of GetTokenViaManualInput.
const DefaultManualInputPrompt = "Paste the URL you were redirected to: "

// GetTokenViaManualInput runs the flow without any browser integration:
// it prints the authorize URL, asks the user to complete the sign-in in a
// browser of their choice and paste the URL the browser was finally
// redirected to, then feeds that URL through the navigation flow.
func GetTokenViaManualInput(ctx context.Context, c *Config, mc ManualInputConfig) (*TokenBundle, error) {
	if mc.In == nil {
		mc.In = os.Stdin
	}
	if mc.Out == nil {
		mc.Out = os.Stderr
	}
	if mc.Prompt == "" {
		mc.Prompt = DefaultManualInputPrompt
	}

	// Buffered so the synchronous callback chain never blocks: one slot for
	// the terminal result and one for a late error.
	respCh := make(chan *localServerResult, 2)
	flow := NewFlow(c.withResultChannel(respCh))
	fmt.Fprintf(mc.Out, "Open %s in a browser and sign in.\n", flow.InitialURL())

	var input string
	var eg errgroup.Group
	eg.Go(func() error {
		buf := bufio.NewReader(mc.In)
		fmt.Fprint(mc.Out, mc.Prompt)
		line, err := buf.ReadString('\n')
		if err != nil && line == "" {
			return xerrors.Errorf("could not read the redirected URL: %w", err)
		}
		input = strings.TrimSpace(line)
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	if flow.Classify(input) != TargetRedirect {
		return nil, xerrors.Errorf("%s does not match the configured redirect URI", input)
	}
	flow.HandleNavigation(ctx, NavigationEvent{URL: input})
	select {
	case result := <-respCh:
		if result.err != nil {
			return nil, result.err
		}
		if result.tokens == nil {
			return nil, xerrors.New("authorization flow ended without tokens")
		}
		return result.tokens, nil
	default:
		return nil, xerrors.New("the redirected URL did not carry an authorization code")
	}
}
