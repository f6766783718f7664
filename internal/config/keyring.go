package config

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const keyringService = "sqlmapper"

// StorePassword moves the connection password into the OS keyring and clears it
// on conn. Connections without a password are left alone.
func StorePassword(conn *Connection) error {
	if conn.Password == "" {
		return nil
	}
	if err := keyring.Set(keyringService, conn.Name, conn.Password); err != nil {
		return fmt.Errorf("store password for %s: %w", conn.Name, err)
	}
	conn.Password = ""
	return nil
}

// ResolvePassword fills conn.Password from the keyring. A missing secret is not
// an error; the server may accept the connection without one.
func ResolvePassword(conn *Connection) error {
	if conn.Password != "" {
		return nil
	}
	secret, err := keyring.Get(keyringService, conn.Name)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("read password for %s: %w", conn.Name, err)
	}
	conn.Password = secret
	return nil
}

// ForgetPassword removes a stored password.
func ForgetPassword(name string) error {
	if err := keyring.Delete(keyringService, name); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("delete password for %s: %w", name, err)
	}
	return nil
}
