package aw

import (
	"sort"
	"strings"

	"github.com/awtools/aw-analyzer/errors"
)

// Watcher bucket ID prefixes. Watchers register as <prefix><hostname>.
const (
	windowBucketPrefix = "aw-watcher-window_"
	afkBucketPrefix    = "aw-watcher-afk_"
	vscodeBucketPrefix = "aw-watcher-vscode_"
	vimBucketPrefix    = "aw-watcher-vim_"
)

// BucketSet holds the bucket IDs resolved for one host. Editor is empty
// when no editor watcher reports to the server.
type BucketSet struct {
	Window string
	AFK    string
	Editor string
}

// DiscoverBuckets resolves the window, afk, and editor bucket IDs from a
// bucket listing. Window and afk are required. Candidate IDs are scanned
// in sorted order so the choice is stable across calls; a configured
// hostname promotes the exact <prefix><hostname> ID ahead of the scan.
func DiscoverBuckets(buckets map[string]Bucket, hostname string) (BucketSet, error) {
	ids := make([]string, 0, len(buckets))
	for id := range buckets {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	set := BucketSet{
		Window: findBucket(ids, windowBucketPrefix, hostname),
		AFK:    findBucket(ids, afkBucketPrefix, hostname),
	}
	set.Editor = findBucket(ids, vscodeBucketPrefix, hostname)
	if set.Editor == "" {
		set.Editor = findBucket(ids, vimBucketPrefix, hostname)
	}

	if set.Window == "" || set.AFK == "" {
		return set, errors.NewConnectionError("Required buckets not found")
	}
	return set, nil
}

func findBucket(ids []string, prefix, hostname string) string {
	if hostname != "" {
		want := prefix + hostname
		for _, id := range ids {
			if id == want {
				return id
			}
		}
	}
	for _, id := range ids {
		if strings.HasPrefix(id, prefix) {
			return id
		}
	}
	return ""
}
