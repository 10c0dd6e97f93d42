package attributes

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/fleethub-io/fleethub/pkg/dmf"
)

type memAttributes struct {
	mu   sync.Mutex
	sets map[string]map[string]string
}

func newMemAttributes() *memAttributes {
	return &memAttributes{sets: map[string]map[string]string{}}
}

func (m *memAttributes) key(tenant, thingID string) string { return tenant + "/" + thingID }

func (m *memAttributes) Get(_ context.Context, tenant, thingID string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]string{}
	for k, v := range m.sets[m.key(tenant, thingID)] {
		out[k] = v
	}
	return out, nil
}

func (m *memAttributes) Save(_ context.Context, tenant, thingID string, attrs map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := map[string]string{}
	for k, v := range attrs {
		cp[k] = v
	}
	m.sets[m.key(tenant, thingID)] = cp
	return nil
}

func seed(repo *memAttributes, attrs map[string]string) {
	_ = repo.Save(context.Background(), "DEFAULT", "device42", attrs)
}

func TestApplyModes(t *testing.T) {
	tests := []struct {
		name    string
		current map[string]string
		update  *dmf.AttributeUpdate
		want    map[string]string
	}{
		{
			name:    "merge adds and overwrites",
			current: map[string]string{"k1": "v1", "k2": "v2"},
			update:  &dmf.AttributeUpdate{Mode: dmf.ModeMerge, Attributes: map[string]string{"k2": "v2b", "k3": "v3"}},
			want:    map[string]string{"k1": "v1", "k2": "v2b", "k3": "v3"},
		},
		{
			name:    "replace drops unmentioned keys",
			current: map[string]string{"k1": "v1", "k2": "v2"},
			update:  &dmf.AttributeUpdate{Mode: dmf.ModeReplace, Attributes: map[string]string{"k3": "v3"}},
			want:    map[string]string{"k3": "v3"},
		},
		{
			name:    "remove deletes listed keys only",
			current: map[string]string{"k1": "v1", "k2": "v2", "k3": "v3"},
			update:  &dmf.AttributeUpdate{Mode: dmf.ModeRemove, Attributes: map[string]string{"k1": "", "k3": "ignored"}},
			want:    map[string]string{"k2": "v2"},
		},
		{
			name:    "remove of unknown key is a no-op",
			current: map[string]string{"k1": "v1"},
			update:  &dmf.AttributeUpdate{Mode: dmf.ModeRemove, Attributes: map[string]string{"kX": ""}},
			want:    map[string]string{"k1": "v1"},
		},
		{
			name:    "empty merge keeps current set",
			current: map[string]string{"k1": "v1"},
			update:  &dmf.AttributeUpdate{Mode: dmf.ModeMerge, Attributes: map[string]string{}},
			want:    map[string]string{"k1": "v1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemAttributes()
			seed(repo, tt.current)
			engine := NewEngine(repo)

			got, err := engine.Apply(context.Background(), "DEFAULT", "device42", tt.update)
			if err != nil {
				t.Fatalf("Apply: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("result = %v, want %v", got, tt.want)
			}

			stored, _ := repo.Get(context.Background(), "DEFAULT", "device42")
			if !reflect.DeepEqual(stored, tt.want) {
				t.Errorf("stored = %v, want %v", stored, tt.want)
			}
		})
	}
}

func TestApplyValidationIsAtomic(t *testing.T) {
	tests := []struct {
		name   string
		update *dmf.AttributeUpdate
	}{
		{
			name: "oversized key",
			update: &dmf.AttributeUpdate{Mode: dmf.ModeMerge, Attributes: map[string]string{
				"ok":                    "fine",
				strings.Repeat("k", 33): "value",
			}},
		},
		{
			name: "oversized value",
			update: &dmf.AttributeUpdate{Mode: dmf.ModeMerge, Attributes: map[string]string{
				"ok":  "fine",
				"big": strings.Repeat("v", 129),
			}},
		},
		{
			name: "empty key",
			update: &dmf.AttributeUpdate{Mode: dmf.ModeMerge, Attributes: map[string]string{
				"": "value",
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemAttributes()
			seed(repo, map[string]string{"k1": "v1"})
			engine := NewEngine(repo)

			_, err := engine.Apply(context.Background(), "DEFAULT", "device42", tt.update)
			var verr *Error
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v, want *attributes.Error", err)
			}

			stored, _ := repo.Get(context.Background(), "DEFAULT", "device42")
			if !reflect.DeepEqual(stored, map[string]string{"k1": "v1"}) {
				t.Errorf("stored set mutated by rejected update: %v", stored)
			}
		})
	}
}

func TestApplyBoundaryLengthsAccepted(t *testing.T) {
	repo := newMemAttributes()
	engine := NewEngine(repo)

	key := strings.Repeat("k", 32)
	value := strings.Repeat("v", 128)
	_, err := engine.Apply(context.Background(), "DEFAULT", "device42", &dmf.AttributeUpdate{
		Mode:       dmf.ModeMerge,
		Attributes: map[string]string{key: value},
	})
	if err != nil {
		t.Fatalf("Apply at boundary lengths: %v", err)
	}
}

func TestApplyLimitsCountCharactersNotBytes(t *testing.T) {
	repo := newMemAttributes()
	engine := NewEngine(repo)

	// 32 and 128 characters, each multiple bytes in UTF-8.
	key := strings.Repeat("ü", 32)
	value := strings.Repeat("世", 128)
	_, err := engine.Apply(context.Background(), "DEFAULT", "device42", &dmf.AttributeUpdate{
		Mode:       dmf.ModeMerge,
		Attributes: map[string]string{key: value},
	})
	if err != nil {
		t.Fatalf("Apply with multibyte boundary lengths: %v", err)
	}

	_, err = engine.Apply(context.Background(), "DEFAULT", "device42", &dmf.AttributeUpdate{
		Mode:       dmf.ModeMerge,
		Attributes: map[string]string{strings.Repeat("ü", 33): "v"},
	})
	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want *attributes.Error for 33-character key", err)
	}
}
