package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnect(t *testing.T) {
	t.Run("Disabled", func(t *testing.T) {
		db, err := Connect(Config{Host: "localhost", Port: 3306})
		assert.ErrorIs(t, err, ErrDisabled)
		assert.Nil(t, db)
	})

	t.Run("Invalid Connection", func(t *testing.T) {
		cfg := Config{
			Enabled:        true,
			Host:           "127.0.0.1",
			Port:           9999, // Unused port
			User:           "root",
			Password:       "wrongpassword",
			Name:           "pcadmin",
			TimeoutSeconds: 1,
		}

		db, err := Connect(cfg)
		assert.Error(t, err)
		assert.Nil(t, db)
	})
}

func TestDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "Defaults timeout",
			cfg:  Config{Host: "db", Port: 3306, User: "root", Name: "pcadmin"},
			want: "root:@tcp(db:3306)/pcadmin?charset=utf8mb4&parseTime=True&loc=UTC&timeout=5s&readTimeout=5s&writeTimeout=5s",
		},
		{
			name: "Encodes password",
			cfg:  Config{Host: "db", Port: 3307, User: "admin", Password: "p@ss/word", Name: "runs", TimeoutSeconds: 10},
			want: "admin:p%40ss%2Fword@tcp(db:3307)/runs?charset=utf8mb4&parseTime=True&loc=UTC&timeout=10s&readTimeout=10s&writeTimeout=10s",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DSN(tt.cfg))
		})
	}
}
