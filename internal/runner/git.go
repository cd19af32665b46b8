package runner

import (
	"context"
	"strings"
)

// GitOutput runs a git command in repoDir and returns trimmed stdout.
func GitOutput(ctx context.Context, repoDir string, args ...string) (string, error) {
	res, err := Run(ctx, repoDir, "git", args...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(res.Stdout)), nil
}

// RemoteURL returns the fetch URL of the named remote, with the ssh form
// git@host:owner/repo(.git) rewritten to https://host/owner/repo
func RemoteURL(ctx context.Context, repoDir, remote string) (string, error) {
	url, err := GitOutput(ctx, repoDir, "remote", "get-url", remote)
	if err != nil {
		return "", err
	}
	return HTTPRemote(url), nil
}

// HTTPRemote normalizes a git remote URL to its http(s) form without the
// .git suffix
func HTTPRemote(url string) string {
	url = strings.TrimSuffix(strings.TrimSpace(url), ".git")
	if rest, ok := strings.CutPrefix(url, "git@"); ok {
		host, path, found := strings.Cut(rest, ":")
		if found {
			return "https://" + host + "/" + path
		}
	}
	if rest, ok := strings.CutPrefix(url, "ssh://git@"); ok {
		return "https://" + rest
	}
	return url
}

// Head returns the short commit hash checked out in repoDir
func Head(ctx context.Context, repoDir string) (string, error) {
	return GitOutput(ctx, repoDir, "rev-parse", "--short", "HEAD")
}
