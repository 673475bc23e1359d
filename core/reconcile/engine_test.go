package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type item struct {
	name string
	data string
}

func itemKey(i item) string { return i.name }

func itemEqual(a, b item) bool { return a.name == b.name && a.data == b.data }

func TestUnique(t *testing.T) {
	items := []item{
		{"web1", "10.0.0.1"},
		{"web2", "10.0.0.2"},
		{"web1", "10.0.0.3"},
	}

	unique, dups := Unique(items, itemKey)

	assert.Equal(t, []item{{"web1", "10.0.0.1"}, {"web2", "10.0.0.2"}}, unique)
	assert.Equal(t, []item{{"web1", "10.0.0.3"}}, dups)
}

func TestMissing(t *testing.T) {
	tests := []struct {
		name        string
		desired     []item
		existing    []string
		wantMissing []item
		wantPresent []item
	}{
		{
			name:        "Already present is a no-op",
			desired:     []item{{"vm1", "vm1.ova"}},
			existing:    []string{"vm1"},
			wantPresent: []item{{"vm1", "vm1.ova"}},
		},
		{
			name:        "Only absent items are missing",
			desired:     []item{{"vm1", "vm1.ova"}, {"boot", "boot.iso"}},
			existing:    []string{"vm1", "other"},
			wantMissing: []item{{"boot", "boot.iso"}},
			wantPresent: []item{{"vm1", "vm1.ova"}},
		},
		{
			name:        "Empty catalog",
			desired:     []item{{"vm1", "vm1.ova"}},
			wantMissing: []item{{"vm1", "vm1.ova"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			missing, present := Missing(tt.desired, KeySet(tt.existing), itemKey)
			assert.Equal(t, tt.wantMissing, missing)
			assert.Equal(t, tt.wantPresent, present)
		})
	}
}

func TestMissing_SecondRunCreatesNothing(t *testing.T) {
	desired := []item{{"vm1", "vm1.ova"}, {"boot", "boot.iso"}}

	missing, _ := Missing(desired, KeySet(nil), itemKey)
	assert.Len(t, missing, 2)

	// Pretend the first run created everything it found missing.
	catalog := []string{}
	for _, m := range missing {
		catalog = append(catalog, m.name)
	}

	missing, present := Missing(desired, KeySet(catalog), itemKey)
	assert.Empty(t, missing)
	assert.Len(t, present, 2)
}
