package cluster

import (
	"context"
	"reflect"
	"sync"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

// Fake is an in-memory Store for tests. It mimics the create-or-update and
// ignore-not-found semantics of the real client and records every call so
// tests can assert on apply/delete ordering and idempotency.
type Fake struct {
	mu        sync.Mutex
	objects   map[Identity]*unstructured.Unstructured
	revisions map[Identity]int

	// Applies and Deletes record call order, including no-op applies.
	Applies []Identity
	Deletes []Identity

	// ApplyErr, when set, is consulted before every apply; a non-nil return
	// is surfaced as the apply error. Used to inject transient failures.
	ApplyErr func(doc *ResourceDocument) error

	// AfterApply, when set, runs after a successful apply while holding the
	// store lock. Tests use it to simulate the cluster converging, e.g.
	// marking a deployment ready once it has been applied.
	AfterApply func(f *Fake, doc *ResourceDocument)
}

// NewFake creates an empty in-memory store.
func NewFake() *Fake {
	return &Fake{
		objects:   make(map[Identity]*unstructured.Unstructured),
		revisions: make(map[Identity]int),
	}
}

// Apply implements Store. Applying an unchanged document does not bump the
// stored revision, matching the no-op semantics of a real apply.
func (f *Fake) Apply(_ context.Context, doc *ResourceDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Applies = append(f.Applies, doc.Identity)

	if f.ApplyErr != nil {
		if err := f.ApplyErr(doc); err != nil {
			return err
		}
	}

	if existing, ok := f.objects[doc.Identity]; ok && reflect.DeepEqual(existing.Object, doc.Object.Object) {
		return nil
	}

	f.objects[doc.Identity] = doc.Object.DeepCopy()
	f.revisions[doc.Identity]++

	if f.AfterApply != nil {
		f.AfterApply(f, doc)
	}
	return nil
}

// Get implements Store.
func (f *Fake) Get(_ context.Context, id Identity) (*unstructured.Unstructured, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	obj, ok := f.objects[id]
	if !ok {
		return nil, notFound(id)
	}
	return obj.DeepCopy(), nil
}

// Delete implements Store.
func (f *Fake) Delete(_ context.Context, id Identity, ignoreNotFound bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Deletes = append(f.Deletes, id)

	if _, ok := f.objects[id]; !ok {
		if ignoreNotFound {
			return nil
		}
		return notFound(id)
	}
	delete(f.objects, id)
	return nil
}

// Put stores an object directly, bypassing apply bookkeeping. Tests use it to
// seed pre-existing cluster state. Callers that already hold the lock via
// AfterApply must use PutLocked instead.
func (f *Fake) Put(obj *unstructured.Unstructured) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.PutLocked(obj)
}

// PutLocked stores an object without acquiring the store lock.
func (f *Fake) PutLocked(obj *unstructured.Unstructured) {
	doc := NewDocument(obj)
	f.objects[doc.Identity] = obj.DeepCopy()
	f.revisions[doc.Identity]++
}

// Revision returns how many times the object has materially changed.
func (f *Fake) Revision(id Identity) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.revisions[id]
}

// Exists reports whether the identity is currently stored.
func (f *Fake) Exists(id Identity) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[id]
	return ok
}

func notFound(id Identity) error {
	gvr := gvrForKind(id.Kind)
	return apierrors.NewNotFound(schema.GroupResource{Group: gvr.Group, Resource: gvr.Resource}, id.Name)
}
