package credential

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/dtroode/numbook-server/internal/model"
)

// File is the decrypted content of the credential file.
type File struct {
	Users    []model.User `json:"users"`
	LastID   int64        `json:"lastId"`
	Checksum string       `json:"checksum"`
}

type checksumContent struct {
	Users  []model.User `json:"users"`
	LastID int64        `json:"lastId"`
}

// computeChecksum digests everything except the checksum field.
func (f *File) computeChecksum() (string, error) {
	users := f.Users
	if users == nil {
		users = []model.User{}
	}

	data, err := json.Marshal(checksumContent{Users: users, LastID: f.LastID})
	if err != nil {
		return "", fmt.Errorf("failed to marshal checksum content: %w", err)
	}

	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func (f *File) findByID(id int64) int {
	for i, u := range f.Users {
		if u.ID == id {
			return i
		}
	}
	return -1
}

func (f *File) findByUsername(username string) int {
	for i, u := range f.Users {
		if u.Username == username {
			return i
		}
	}
	return -1
}

func (f *File) countAdmins() int {
	n := 0
	for _, u := range f.Users {
		if u.Role == model.RoleAdmin {
			n++
		}
	}
	return n
}

// validate checks the invariants every persisted file must hold: positive
// unique ids, lastId not below any id, unique non-empty usernames and known
// roles.
func (f *File) validate() error {
	ids := make(map[int64]struct{}, len(f.Users))
	names := make(map[string]struct{}, len(f.Users))
	for _, u := range f.Users {
		if u.ID <= 0 {
			return fmt.Errorf("%w: user id %d is not positive", model.ErrValidation, u.ID)
		}
		if u.ID > f.LastID {
			return fmt.Errorf("%w: user id %d exceeds lastId %d", model.ErrValidation, u.ID, f.LastID)
		}
		if _, ok := ids[u.ID]; ok {
			return fmt.Errorf("%w: duplicate user id %d", model.ErrValidation, u.ID)
		}
		ids[u.ID] = struct{}{}

		if u.Username == "" {
			return fmt.Errorf("%w: user %d has an empty username", model.ErrValidation, u.ID)
		}
		if _, ok := names[u.Username]; ok {
			return fmt.Errorf("%w: duplicate username %q", model.ErrValidation, u.Username)
		}
		names[u.Username] = struct{}{}

		if !u.Role.Valid() {
			return fmt.Errorf("%w: user %d has unknown role %q", model.ErrValidation, u.ID, u.Role)
		}
	}
	return nil
}
