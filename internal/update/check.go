// Package update implements the launcher's out-of-band update notification.
//
// The check is strictly best-effort: it runs with a short deadline before
// dispatch, and every failure path — network errors, rate limiting, garbage
// responses, an unparsable version — is silently discarded. The outcome can
// print a one-line notice on stderr and nothing else; it never affects the
// exit code or the delegation decision.
//
// Callers are expected to skip the check entirely when the invocation asked
// for machine-parseable output, so piped consumers see only the payload.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/mod/semver"
)

const (
	// releasesOwner and releasesRepo identify where lode releases are
	// published on GitHub.
	releasesOwner = "mmr-tortoise"
	releasesRepo  = "lode"

	// checkTimeout bounds the whole check. A launcher that stalls on a slow
	// network before every build would be worse than no notifier at all.
	checkTimeout = 800 * time.Millisecond

	// maxResponseBytes caps the API response we are willing to read.
	maxResponseBytes = 1 << 20
)

// githubRelease is the JSON wire format for the GitHub "latest release"
// API response. Only the tag is needed.
type githubRelease struct {
	TagName string `json:"tag_name"`
	Draft   bool   `json:"draft"`
}

// Checker queries the release API and prints an update notice when a newer
// version than the one currently running is available.
type Checker struct {
	httpClient *http.Client
	baseURL    string
	out        io.Writer
}

// Option configures a Checker during construction.
type Option func(*Checker)

// WithHTTPClient sets a custom HTTP client, useful for tests.
func WithHTTPClient(c *http.Client) Option {
	return func(ch *Checker) {
		ch.httpClient = c
	}
}

// WithBaseURL overrides the release API base URL, primarily for test
// servers.
func WithBaseURL(base string) Option {
	return func(ch *Checker) {
		ch.baseURL = strings.TrimRight(base, "/")
	}
}

// WithOutput redirects the notice, primarily for tests. Notices go to
// stderr by default so stdout stays reserved for command output.
func WithOutput(w io.Writer) Option {
	return func(ch *Checker) {
		ch.out = w
	}
}

// NewChecker creates a Checker pointed at the real release API unless
// options say otherwise.
func NewChecker(opts ...Option) *Checker {
	ch := &Checker{
		httpClient: &http.Client{Timeout: checkTimeout},
		baseURL:    "https://api.github.com",
		out:        os.Stderr,
	}
	for _, opt := range opts {
		opt(ch)
	}
	return ch
}

// LatestVersion returns the tag of the latest published release.
func (c *Checker) LatestVersion(ctx context.Context) (string, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", c.baseURL, releasesOwner, releasesRepo)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("release API returned %s", resp.Status)
	}

	var release githubRelease
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&release); err != nil {
		return "", err
	}
	if release.Draft || release.TagName == "" {
		return "", fmt.Errorf("no published release found")
	}
	return release.TagName, nil
}

// Notify checks for a newer release and prints a one-line notice when one
// exists. It never returns an error; a notifier failure must not break the
// actual command.
func (c *Checker) Notify(currentVersion string) {
	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	latest, err := c.LatestVersion(ctx)
	if err != nil {
		return
	}

	cur := "v" + strings.TrimPrefix(currentVersion, "v")
	lat := "v" + strings.TrimPrefix(latest, "v")
	if !semver.IsValid(cur) || !semver.IsValid(lat) {
		// Dev builds ("dev") and odd tags simply produce no notice.
		return
	}

	if semver.Compare(lat, cur) > 0 {
		fmt.Fprintf(c.out, "Update available %s → %s: run your package manager's upgrade command to install it.\n", cur, lat)
	}
}
