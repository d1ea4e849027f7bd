package placement

import (
	"fmt"
	"sync"

	"github.com/zzenonn/zscrub/internal/repository/objectstore"
)

var _ Placement = (*Registry)(nil)

// Registry is a fixed mapping of local buckets to repositories.
type Registry struct {
	mu           sync.RWMutex
	repositories map[string]objectstore.ObjectRepository
	bucketNames  []string
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		repositories: make(map[string]objectstore.ObjectRepository),
		bucketNames:  make([]string, 0),
	}
}

// RegisterBucket maps localBucket to repo
func (r *Registry) RegisterBucket(localBucket string, repo objectstore.ObjectRepository) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.repositories[localBucket]; exists {
		return fmt.Errorf("bucket %s already registered", localBucket)
	}

	r.repositories[localBucket] = repo
	r.bucketNames = append(r.bucketNames, localBucket)
	return nil
}

// Locate returns the repository for a local bucket
func (r *Registry) Locate(localBucket string) (objectstore.ObjectRepository, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	repo, exists := r.repositories[localBucket]
	return repo, exists
}

// ListBuckets returns all registered bucket names in registration order
func (r *Registry) ListBuckets() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	buckets := make([]string, len(r.bucketNames))
	copy(buckets, r.bucketNames)
	return buckets
}
