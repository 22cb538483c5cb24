package lastfm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"time"
)

// AuthCallbackPort is the port used for the local authorization callback.
const AuthCallbackPort = 9847

// ErrNoToken is returned when the callback arrives without a token.
var ErrNoToken = errors.New("no token received")

const callbackPage = `<!DOCTYPE html>
<html>
<head><title>Ripple - Last.fm</title></head>
<body style="font-family: sans-serif; text-align: center; padding: 50px;">
<h1>%s</h1>
<p>%s</p>
</body>
</html>`

// AuthServer receives the token Last.fm redirects to after authorization.
type AuthServer struct {
	server    *http.Server
	listener  net.Listener
	tokenChan chan string
	done      chan struct{}
}

// StartAuthServer listens on addr, e.g. "127.0.0.1:9847". An empty addr
// picks a free local port.
func StartAuthServer(addr string) (*AuthServer, error) {
	if addr == "" {
		addr = "127.0.0.1:0"
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	as := &AuthServer{
		listener:  listener,
		tokenChan: make(chan string, 1),
		done:      make(chan struct{}),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/callback", as.handleCallback)
	as.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		_ = as.server.Serve(listener)
		close(as.done)
	}()

	return as, nil
}

func (as *AuthServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")

	w.Header().Set("Content-Type", "text/html")
	if token != "" {
		fmt.Fprintf(w, callbackPage, "Authorization Successful!", "You can close this window and return to Ripple.")
	} else {
		fmt.Fprintf(w, callbackPage, "Authorization Failed", "No token received. Please try again.")
	}

	select {
	case as.tokenChan <- token:
	default:
	}
}

// CallbackURL is the URL to pass to Client.GetAuthURL.
func (as *AuthServer) CallbackURL() string {
	return "http://" + as.listener.Addr().String() + "/callback"
}

// WaitForToken blocks until the callback fires, timeout elapses or ctx
// ends.
func (as *AuthServer) WaitForToken(ctx context.Context, timeout time.Duration) (string, error) {
	return waitForToken(ctx, as.tokenChan, timeout)
}

func waitForToken(ctx context.Context, tokens <-chan string, timeout time.Duration) (string, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case token := <-tokens:
		if token == "" {
			return "", ErrNoToken
		}
		return token, nil
	case <-timer.C:
		return "", fmt.Errorf("authorization timed out after %s", timeout)
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Shutdown stops the server.
func (as *AuthServer) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = as.server.Shutdown(ctx)
	<-as.done
}

// OpenBrowser opens url in the default browser.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
