package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/estebanpuyanas/FVT/pkg/object"
)

func TestUpdateRefCAS_ConcurrentSingleWinner(t *testing.T) {
	r := newTestRepo(t)

	base := object.Hash(fmt.Sprintf("%064x", 0xabc))
	if err := r.updateRefCAS("main", base, "test"); err != nil {
		t.Fatalf("updateRefCAS(base): %v", err)
	}

	const workers = 16
	var wg sync.WaitGroup
	wg.Add(workers)
	successCh := make(chan object.Hash, workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			next := object.Hash(fmt.Sprintf("%064x", i+1))
			if err := r.updateRefCAS("main", next, "test", base); err != nil {
				errCh <- err
				return
			}
			successCh <- next
		}()
	}
	wg.Wait()
	close(successCh)
	close(errCh)

	var winner object.Hash
	successes := 0
	for h := range successCh {
		successes++
		winner = h
	}
	if successes != 1 {
		t.Fatalf("successful CAS updates = %d, want 1", successes)
	}
	for err := range errCh {
		if !errors.Is(err, ErrRefCASMismatch) {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	got, err := r.readRef("main")
	if err != nil {
		t.Fatalf("readRef(main): %v", err)
	}
	if got != winner {
		t.Fatalf("main = %s, want winner %s", got, winner)
	}
}

func TestUpdateRefCAS_CleansLockOnMismatch(t *testing.T) {
	r := newTestRepo(t)
	current := object.Hash(fmt.Sprintf("%064x", 1))
	if err := r.updateRefCAS("main", current, "test"); err != nil {
		t.Fatalf("updateRefCAS: %v", err)
	}

	err := r.updateRefCAS("main", object.Hash(fmt.Sprintf("%064x", 2)), "test", object.Hash(fmt.Sprintf("%064x", 3)))
	if !errors.Is(err, ErrRefCASMismatch) {
		t.Fatalf("expected CAS mismatch, got: %v", err)
	}
	lockPath := filepath.Join(r.MetaDir, "refs", "heads", "main.lock")
	if _, statErr := os.Stat(lockPath); !os.IsNotExist(statErr) {
		t.Fatalf("expected no lingering lockfile at %q, stat err=%v", lockPath, statErr)
	}
}

func TestUpdateRefCAS_EmptyExpectedRequiresAbsentRef(t *testing.T) {
	r := newTestRepo(t)
	h := object.Hash(fmt.Sprintf("%064x", 7))
	if err := r.updateRefCAS("new", h, "test", ""); err != nil {
		t.Fatalf("create via CAS: %v", err)
	}
	if err := r.updateRefCAS("new", h, "test", ""); !errors.Is(err, ErrRefCASMismatch) {
		t.Fatalf("second create error = %v, want ErrRefCASMismatch", err)
	}
}

func TestCreateBranch_ConcurrentSingleWinner(t *testing.T) {
	r := newTestRepo(t)
	writeWorkFile(t, r, "main.go", "package main\n")
	c := mustCommit(t, r, "initial")

	const workers = 12
	var wg sync.WaitGroup
	wg.Add(workers)
	successCh := make(chan struct{}, workers)
	errCh := make(chan error, workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			if _, err := r.CreateBranch("feature"); err != nil {
				errCh <- err
				return
			}
			successCh <- struct{}{}
		}()
	}
	wg.Wait()
	close(successCh)
	close(errCh)

	if successes := len(successCh); successes != 1 {
		t.Fatalf("CreateBranch successes = %d, want 1", successes)
	}
	for err := range errCh {
		if !errors.Is(err, ErrDuplicateBranch) {
			t.Fatalf("unexpected CreateBranch error: %v", err)
		}
	}
	b, err := r.ResolveBranch("feature")
	if err != nil {
		t.Fatalf("ResolveBranch: %v", err)
	}
	if b.Target != c.Hash {
		t.Fatalf("feature = %s, want %s", b.Target, c.Hash)
	}
}
