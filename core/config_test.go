package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	vars := []string{
		"ENV", "DEBUG", "PORT", "DATABASE_ENGINE", "DATABASE_URL", "MONGODB_URI",
		"EMAIL_TRANSPORT", "EMAIL_SECURITY", "EMAIL_PORT", "EMAIL_FROM", "LOG_LEVEL",
	}

	tests := []struct {
		name    string
		env     map[string]string
		check   func(t *testing.T, conf *Config)
		wantErr bool
	}{
		{
			name: "test defaults",
			env:  map[string]string{"ENV": "test"},
			check: func(t *testing.T, conf *Config) {
				assert.Equal(t, "TEST", conf.Env)
				assert.True(t, conf.TestMode)
				assert.Equal(t, 5000, conf.Port)
				assert.Equal(t, ":5000", conf.Address())
				assert.Equal(t, EnginePostgres, conf.Database.Engine)
				assert.NotEmpty(t, conf.Database.URL)
				assert.Equal(t, TransportConsole, conf.Email.Transport)
				assert.Equal(t, "info", conf.Log.Level)
			},
		},
		{
			name: "production",
			env: map[string]string{
				"ENV": "prod", "PORT": "8080", "DATABASE_ENGINE": "SQLite", "DATABASE_URL": "file:assistant.db",
				"EMAIL_FROM": "Assistant <assistant@example.com>",
			},
			check: func(t *testing.T, conf *Config) {
				assert.Equal(t, "PROD", conf.Env)
				assert.False(t, conf.TestMode)
				assert.Equal(t, 8080, conf.Port)
				assert.Equal(t, EngineSQLite, conf.Database.Engine)
				assert.Equal(t, "file:assistant.db", conf.Database.URL)
				assert.Equal(t, TransportSMTP, conf.Email.Transport)
				assert.Equal(t, "assistant@example.com", conf.DefaultFromEmail().Address)
				assert.Equal(t, "Assistant", conf.DefaultFromEmail().Name)
				assert.Equal(t, `"Assistant" <assistant@example.com>`, conf.DefaultFromEmail().String())
				assert.Equal(t, SMTPSecurityStartTLS, conf.Email.Security)
			},
		},
		{
			name: "debug uses the console transport",
			env:  map[string]string{"ENV": "dev", "DEBUG": "true"},
			check: func(t *testing.T, conf *Config) {
				assert.True(t, conf.Debug)
				assert.Equal(t, TransportConsole, conf.Email.Transport)
			},
		},
		{
			name: "explicit transport",
			env:  map[string]string{"ENV": "dev", "DEBUG": "true", "EMAIL_TRANSPORT": "SendGrid"},
			check: func(t *testing.T, conf *Config) {
				assert.Equal(t, TransportSendgrid, conf.Email.Transport)
			},
		},
		{
			name: "legacy database variable",
			env:  map[string]string{"ENV": "prod", "MONGODB_URI": "postgres://db/assistant"},
			check: func(t *testing.T, conf *Config) {
				assert.Equal(t, "postgres://db/assistant", conf.Database.URL)
			},
		},
		{
			name:    "legacy database variable with a mongodb url",
			env:     map[string]string{"ENV": "prod", "MONGODB_URI": "mongodb://localhost:27017/assistant"},
			wantErr: true,
		},
		{
			name: "implicit tls port",
			env:  map[string]string{"ENV": "prod", "EMAIL_PORT": "465"},
			check: func(t *testing.T, conf *Config) {
				assert.Equal(t, 465, conf.Email.Port)
				assert.Equal(t, SMTPSecurityTLS, conf.Email.Security)
			},
		},
		{
			name: "explicit security",
			env:  map[string]string{"ENV": "prod", "EMAIL_PORT": "25", "EMAIL_SECURITY": "None"},
			check: func(t *testing.T, conf *Config) {
				assert.Equal(t, SMTPSecurityNone, conf.Email.Security)
			},
		},
		{
			name:    "unknown security",
			env:     map[string]string{"ENV": "prod", "EMAIL_SECURITY": "ssl"},
			wantErr: true,
		},
		{
			name:    "unknown engine",
			env:     map[string]string{"ENV": "prod", "DATABASE_ENGINE": "mongodb"},
			wantErr: true,
		},
		{
			name:    "unknown transport",
			env:     map[string]string{"ENV": "prod", "EMAIL_TRANSPORT": "pigeon"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range vars {
				t.Setenv(k, tt.env[k])
			}
			conf, err := NewConfig()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, conf)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		conf    Config
		wantErr string
	}{
		{
			name: "memory",
			conf: Config{Database: DatabaseConfig{Engine: EngineMemory}, Email: EmailConfig{Transport: TransportConsole}},
		},
		{
			name:    "sqlite without url",
			conf:    Config{Database: DatabaseConfig{Engine: EngineSQLite}, Email: EmailConfig{Transport: TransportSMTP}},
			wantErr: "DATABASE_URL is required for the sqlite engine",
		},
		{
			name: "sqlite file url",
			conf: Config{Database: DatabaseConfig{Engine: EngineSQLite, URL: "file:assistant.db?_pragma=foreign_keys(1)"}, Email: EmailConfig{Transport: TransportConsole}},
		},
		{
			name: "sqlite path",
			conf: Config{Database: DatabaseConfig{Engine: EngineSQLite, URL: "/var/lib/assistant.db"}, Email: EmailConfig{Transport: TransportConsole}},
		},
		{
			name: "postgresql scheme",
			conf: Config{Database: DatabaseConfig{Engine: EnginePostgres, URL: "postgresql://db/assistant"}, Email: EmailConfig{Transport: TransportConsole}},
		},
		{
			name:    "postgres with a mongodb url",
			conf:    Config{Database: DatabaseConfig{Engine: EnginePostgres, URL: "mongodb://localhost/assistant"}, Email: EmailConfig{Transport: TransportConsole}},
			wantErr: `DATABASE_URL scheme "mongodb" does not match the postgres engine`,
		},
		{
			name:    "sqlite with a postgres url",
			conf:    Config{Database: DatabaseConfig{Engine: EngineSQLite, URL: "postgres://db/assistant"}, Email: EmailConfig{Transport: TransportConsole}},
			wantErr: `DATABASE_URL scheme "postgres" does not match the sqlite engine`,
		},
		{
			name:    "smtp without security",
			conf:    Config{Database: DatabaseConfig{Engine: EngineMemory}, Email: EmailConfig{Transport: TransportSMTP}},
			wantErr: `unknown email security ""`,
		},
		{
			name: "smtp with security",
			conf: Config{Database: DatabaseConfig{Engine: EngineMemory}, Email: EmailConfig{Transport: TransportSMTP, Security: SMTPSecurityTLS}},
		},
		{
			name:    "no transport",
			conf:    Config{Database: DatabaseConfig{Engine: EngineMemory}},
			wantErr: `unknown email transport ""`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.conf.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tt.wantErr)
			}
		})
	}
}
