package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vmware/govmomi/vapi/library"
)

func TestTypeForFile(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"boot.iso", library.ItemTypeISO},
		{"image.OVA", library.ItemTypeOVF},
		{"appliance.ovf", library.ItemTypeOVF},
		{"notes.txt", ""},
		{"noext", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TypeForFile(tt.name))
		})
	}
}

func TestNewItem(t *testing.T) {
	item := NewItem("images/ubuntu-22.04.OVA")

	assert.Equal(t, Item{
		Name:     "ubuntu-22.04",
		FileName: "ubuntu-22.04.OVA",
		Type:     library.ItemTypeOVF,
	}, item)
}
