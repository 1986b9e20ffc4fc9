package keybackend

// UsersConfig holds configuration for loading sandbox users.
type UsersConfig struct {
	Inline []User `mapstructure:"inline"`
	File   string `mapstructure:"file"`
}

// NewUserStore creates a MapUserStore from inline users and an optional
// JSON file. File users take precedence over inline users with the same name.
func NewUserStore(cfg UsersConfig) (*MapUserStore, error) {
	users := make(map[string]string)

	for _, u := range cfg.Inline {
		if u.Username != "" && u.Password != "" {
			users[u.Username] = u.Password
		}
	}

	if cfg.File != "" {
		fileUsers, err := LoadUsersFromFile(cfg.File)
		if err != nil {
			return nil, err
		}
		for k, v := range fileUsers {
			users[k] = v
		}
	}

	return NewMapUserStore(users), nil
}
