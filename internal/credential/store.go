// Package credential persists user accounts in a single encrypted file.
//
// Every operation re-reads, decrypts and verifies the file, so tampering is
// detected on the next access. Operations on one Store are serialized by a
// mutex; concurrent writers from other processes are not supported.
package credential

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dtroode/numbook-server/internal/clock"
	"github.com/dtroode/numbook-server/internal/logger"
	"github.com/dtroode/numbook-server/internal/model"
)

// FileName is the backup name hint passed to the notifier.
const FileName = "users.enc"

// Options configures a Store.
type Options struct {
	Path              string
	Passphrase        string
	BootstrapUsername string
	BootstrapPassword string
	Clock             clock.Clock
	Notifier          model.Notifier
}

var _ model.UserStore = (*Store)(nil)

// Store is the encrypted credential file.
type Store struct {
	path              string
	cipher            *fileCipher
	bootstrapUsername string
	bootstrapPassword string
	clock             clock.Clock
	notifier          model.Notifier
	logger            *logger.Logger

	mu sync.Mutex
}

// New creates a Store. The file is not touched until the first operation.
func New(opts Options, logger *logger.Logger) (*Store, error) {
	if opts.Path == "" {
		return nil, errors.New("credential file path is required")
	}
	if opts.BootstrapUsername == "" || opts.BootstrapPassword == "" {
		return nil, errors.New("bootstrap credentials are required")
	}

	c, err := newFileCipher(opts.Passphrase)
	if err != nil {
		return nil, err
	}

	clk := opts.Clock
	if clk == nil {
		clk = clock.Real()
	}

	return &Store{
		path:              opts.Path,
		cipher:            c,
		bootstrapUsername: opts.BootstrapUsername,
		bootstrapPassword: opts.BootstrapPassword,
		clock:             clk,
		notifier:          opts.Notifier,
		logger:            logger.With("component", "credential_store"),
	}, nil
}

// Load reads and verifies the credential file, creating it with the
// bootstrap administrator when it does not exist.
func (s *Store) Load(ctx context.Context) (File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(ctx)
}

// Save checks the invariants of f, recomputes its checksum and persists it.
// An invalid file is rejected with ErrValidation and the stored file is kept.
func (s *Store) Save(ctx context.Context, f *File) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.save(ctx, f)
	return err
}

// Snapshot returns the verified encrypted file content for backups.
func (s *Store) Snapshot(ctx context.Context) (string, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.load(ctx); err != nil {
		return "", nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read credential file: %w", err)
	}

	return FileName, data, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load(ctx)
	if err != nil {
		return model.User{}, err
	}

	i := f.findByUsername(username)
	if i < 0 {
		return model.User{}, model.ErrNotFound
	}

	return f.Users[i], nil
}

func (s *Store) GetUserByID(ctx context.Context, id int64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load(ctx)
	if err != nil {
		return model.User{}, err
	}

	i := f.findByID(id)
	if i < 0 {
		return model.User{}, model.ErrNotFound
	}

	return f.Users[i], nil
}

// ValidatePassword returns the user when password matches. Unknown users and
// wrong passwords both yield ErrInvalidCredentials.
func (s *Store) ValidatePassword(ctx context.Context, username, password string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load(ctx)
	if err != nil {
		return model.User{}, err
	}

	i := f.findByUsername(username)
	if i < 0 {
		hashPassword(password, dummySalt)
		return model.User{}, model.ErrInvalidCredentials
	}

	user := f.Users[i]
	if !verifyPassword(password, user.Salt, user.PasswordHash) {
		return model.User{}, model.ErrInvalidCredentials
	}

	return user, nil
}

func (s *Store) CreateUser(ctx context.Context, username, password string, role model.Role) (model.User, error) {
	if username == "" || password == "" {
		return model.User{}, fmt.Errorf("%w: username and password are required", model.ErrValidation)
	}
	if !role.Valid() {
		return model.User{}, fmt.Errorf("%w: unknown role %q", model.ErrValidation, role)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var created model.User
	err := s.mutate(ctx, func(f *File) error {
		if f.findByUsername(username) >= 0 {
			return model.ErrDuplicateUsername
		}

		f.LastID++
		user, err := s.newUser(f.LastID, username, password, role)
		if err != nil {
			return err
		}

		f.Users = append(f.Users, user)
		created = user
		return nil
	})
	if err != nil {
		return model.User{}, err
	}

	s.logger.Info("Credential store: user created",
		"user_id", created.ID,
		"username", created.Username,
		"role", created.Role)

	return created, nil
}

func (s *Store) UpdateUser(ctx context.Context, id int64, update model.UserUpdate) (model.User, error) {
	if update.Username != nil && *update.Username == "" {
		return model.User{}, fmt.Errorf("%w: username must not be empty", model.ErrValidation)
	}
	if update.Role != nil && !update.Role.Valid() {
		return model.User{}, fmt.Errorf("%w: unknown role %q", model.ErrValidation, *update.Role)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var updated model.User
	err := s.mutate(ctx, func(f *File) error {
		i := f.findByID(id)
		if i < 0 {
			return model.ErrNotFound
		}

		user := f.Users[i]
		if update.Username != nil && *update.Username != user.Username {
			if f.findByUsername(*update.Username) >= 0 {
				return model.ErrDuplicateUsername
			}
			user.Username = *update.Username
		}
		if update.Role != nil {
			if user.Role == model.RoleAdmin && *update.Role != model.RoleAdmin && f.countAdmins() == 1 {
				return model.ErrLastAdmin
			}
			user.Role = *update.Role
		}
		user.UpdatedAt = s.now()

		f.Users[i] = user
		updated = user
		return nil
	})
	if err != nil {
		return model.User{}, err
	}

	return updated, nil
}

// ChangePassword replaces the password after verifying the current one. It
// returns false without touching the file when verification fails.
func (s *Store) ChangePassword(ctx context.Context, id int64, currentPassword, newPassword string) (bool, error) {
	if newPassword == "" {
		return false, fmt.Errorf("%w: new password must not be empty", model.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load(ctx)
	if err != nil {
		return false, err
	}

	i := f.findByID(id)
	if i < 0 {
		return false, nil
	}

	user := f.Users[i]
	if !verifyPassword(currentPassword, user.Salt, user.PasswordHash) {
		s.logger.Info("Credential store: password change rejected", "user_id", id)
		return false, nil
	}

	salt, err := generateSalt()
	if err != nil {
		return false, err
	}
	user.Salt = salt
	user.PasswordHash = hashPassword(newPassword, salt)
	user.UpdatedAt = s.now()
	f.Users[i] = user

	if err := s.commit(ctx, &f); err != nil {
		return false, err
	}

	s.logger.Info("Credential store: password changed", "user_id", id)

	return true, nil
}

// ChangeCredentials verifies the current password, then replaces the password
// and renames the user in a single write. Nothing is changed when any check
// fails: a wrong password or unknown id yields ErrInvalidCredentials and a
// taken username ErrDuplicateUsername.
func (s *Store) ChangeCredentials(ctx context.Context, id int64, currentPassword, newUsername, newPassword string) (model.User, error) {
	if newUsername == "" {
		return model.User{}, fmt.Errorf("%w: username must not be empty", model.ErrValidation)
	}
	if newPassword == "" {
		return model.User{}, fmt.Errorf("%w: new password must not be empty", model.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var updated model.User
	err := s.mutate(ctx, func(f *File) error {
		i := f.findByID(id)
		if i < 0 {
			return model.ErrInvalidCredentials
		}

		user := f.Users[i]
		if !verifyPassword(currentPassword, user.Salt, user.PasswordHash) {
			return model.ErrInvalidCredentials
		}
		if newUsername != user.Username {
			if f.findByUsername(newUsername) >= 0 {
				return model.ErrDuplicateUsername
			}
			user.Username = newUsername
		}

		salt, err := generateSalt()
		if err != nil {
			return err
		}
		user.Salt = salt
		user.PasswordHash = hashPassword(newPassword, salt)
		user.UpdatedAt = s.now()

		f.Users[i] = user
		updated = user
		return nil
	})
	if err != nil {
		if errors.Is(err, model.ErrInvalidCredentials) {
			s.logger.Info("Credential store: credential change rejected", "user_id", id)
		}
		return model.User{}, err
	}

	s.logger.Info("Credential store: credentials changed", "user_id", id)

	return updated, nil
}

// GetAllUsers lists users without password material.
func (s *Store) GetAllUsers(ctx context.Context) ([]model.UserInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	users := make([]model.UserInfo, 0, len(f.Users))
	for _, u := range f.Users {
		users = append(users, u.Info())
	}

	return users, nil
}

// DeleteUser removes a user. Its id is never handed out again.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.mutate(ctx, func(f *File) error {
		i := f.findByID(id)
		if i < 0 {
			return model.ErrNotFound
		}
		if f.Users[i].Role == model.RoleAdmin && f.countAdmins() == 1 {
			return model.ErrLastAdmin
		}

		f.Users = append(f.Users[:i], f.Users[i+1:]...)
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Credential store: user deleted", "user_id", id)

	return nil
}

// mutate runs fn on a freshly loaded file and commits the result. The caller
// must hold s.mu.
func (s *Store) mutate(ctx context.Context, fn func(f *File) error) error {
	f, err := s.load(ctx)
	if err != nil {
		return err
	}

	if err := fn(&f); err != nil {
		return err
	}

	return s.commit(ctx, &f)
}

// commit saves f and notifies the backup hook.
func (s *Store) commit(ctx context.Context, f *File) error {
	data, err := s.save(ctx, f)
	if err != nil {
		return err
	}

	if s.notifier != nil {
		s.notifier.Notify(FileName, data)
	}

	return nil
}

func (s *Store) load(ctx context.Context) (File, error) {
	if err := ctx.Err(); err != nil {
		return File{}, err
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return s.initialize(ctx)
	}
	if err != nil {
		return File{}, fmt.Errorf("failed to read credential file: %w", err)
	}

	plaintext, err := s.cipher.decrypt(string(data))
	if err != nil {
		s.logger.Error("Credential store: failed to decrypt credential file",
			"path", s.path,
			"error", err.Error())
		return File{}, err
	}

	var f File
	if err := json.Unmarshal(plaintext, &f); err != nil {
		return File{}, fmt.Errorf("%w: failed to parse credential file: %v", model.ErrIntegrity, err)
	}

	checksum, err := f.computeChecksum()
	if err != nil {
		return File{}, err
	}
	if subtle.ConstantTimeCompare([]byte(checksum), []byte(f.Checksum)) != 1 {
		s.logger.Error("Credential store: checksum mismatch, file may have been tampered with",
			"path", s.path)
		return File{}, fmt.Errorf("%w: checksum mismatch", model.ErrIntegrity)
	}

	return f, nil
}

// save returns the encrypted bytes written to disk.
func (s *Store) save(ctx context.Context, f *File) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if f.Users == nil {
		f.Users = []model.User{}
	}
	if err := f.validate(); err != nil {
		return nil, err
	}

	checksum, err := f.computeChecksum()
	if err != nil {
		return nil, err
	}
	f.Checksum = checksum

	plaintext, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal credential file: %w", err)
	}

	encrypted, err := s.cipher.encrypt(plaintext)
	if err != nil {
		return nil, err
	}

	data := []byte(encrypted)
	if err := writeFileAtomic(s.path, data); err != nil {
		return nil, err
	}

	return data, nil
}

func (s *Store) initialize(ctx context.Context) (File, error) {
	user, err := s.newUser(1, s.bootstrapUsername, s.bootstrapPassword, model.RoleAdmin)
	if err != nil {
		return File{}, err
	}

	f := File{Users: []model.User{user}, LastID: 1}
	if _, err := s.save(ctx, &f); err != nil {
		return File{}, fmt.Errorf("failed to initialize credential file: %w", err)
	}

	s.logger.Warn("Credential store: created credential file with bootstrap administrator, change its password",
		"path", s.path,
		"username", user.Username)

	return f, nil
}

func (s *Store) newUser(id int64, username, password string, role model.Role) (model.User, error) {
	salt, err := generateSalt()
	if err != nil {
		return model.User{}, err
	}

	now := s.now()
	return model.User{
		ID:           id,
		Username:     username,
		PasswordHash: hashPassword(password, salt),
		Role:         role,
		Salt:         salt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (s *Store) now() time.Time {
	return s.clock.Now().UTC()
}

// writeFileAtomic replaces path with data, readable and writable by the
// owner only.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create credential directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+strings.TrimPrefix(filepath.Base(path), ".")+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set credential file permissions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write credential file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync credential file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close credential file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace credential file: %w", err)
	}

	return nil
}
