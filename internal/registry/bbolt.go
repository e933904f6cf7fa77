package registry

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/illarion/lockdir/internal/auth"
)

// Bucket names
var (
	ConfigBucket  = []byte("config")  // Schema version, timestamps, verifier params
	FoldersBucket = []byte("folders") // Folder records keyed by insertion sequence
)

// Config keys
var (
	ConfigVersion     = []byte("version")
	ConfigCreated     = []byte("created")
	ConfigModified    = []byte("modified")
	ConfigAuthSalt    = []byte("auth_salt")
	ConfigAuthIters   = []byte("auth_iterations")
	ConfigAuthVerifer = []byte("auth_verifier")
)

// Store provides BBolt-based persistence for folder records and the
// authorizer's enrolled verifier.
type Store struct {
	db *bolt.DB
}

// Open opens or creates a registry database
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Initialize creates the bucket structure for a new registry
func (s *Store) Initialize() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{ConfigBucket, FoldersBucket} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}

		config := tx.Bucket(ConfigBucket)
		if err := config.Put(ConfigVersion, []byte("1")); err != nil {
			return err
		}

		now := time.Now()
		created, _ := now.MarshalBinary()
		if err := config.Put(ConfigCreated, created); err != nil {
			return err
		}
		return config.Put(ConfigModified, created)
	})
}

// IsInitialized checks if the database has been initialized
func (s *Store) IsInitialized() (bool, error) {
	var initialized bool
	err := s.db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config != nil && config.Get(ConfigVersion) != nil {
			initialized = true
		}
		return nil
	})
	return initialized, err
}

// Add appends a record to the tracked list. Fails if a record with the
// same path is already present.
func (s *Store) Add(rec Record) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		folders := tx.Bucket(FoldersBucket)
		if folders == nil {
			return fmt.Errorf("folders bucket not found")
		}

		var dup bool
		_ = folders.ForEach(func(k, v []byte) error {
			var existing Record
			if err := json.Unmarshal(v, &existing); err != nil {
				return nil
			}
			if existing.Path == rec.Path {
				dup = true
			}
			return nil
		})
		if dup {
			return ErrAlreadyExists
		}

		seq, err := folders.NextSequence()
		if err != nil {
			return err
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)

		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if err := folders.Put(key, data); err != nil {
			return err
		}
		return touchModified(tx)
	})
}

// Get returns the record with the given id
func (s *Store) Get(id string) (Record, error) {
	var rec Record
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		folders := tx.Bucket(FoldersBucket)
		if folders == nil {
			return fmt.Errorf("folders bucket not found")
		}
		return folders.ForEach(func(k, v []byte) error {
			if found {
				return nil
			}
			var candidate Record
			if err := json.Unmarshal(v, &candidate); err != nil {
				return err
			}
			if candidate.ID == id {
				rec = candidate
				found = true
			}
			return nil
		})
	})
	if err != nil {
		return Record{}, err
	}
	if !found {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// FindByName returns the first record whose display name matches
func (s *Store) FindByName(name string) (Record, error) {
	var rec Record
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		folders := tx.Bucket(FoldersBucket)
		if folders == nil {
			return fmt.Errorf("folders bucket not found")
		}
		return folders.ForEach(func(k, v []byte) error {
			if found {
				return nil
			}
			var candidate Record
			if err := json.Unmarshal(v, &candidate); err != nil {
				return err
			}
			if candidate.Name == name {
				rec = candidate
				found = true
			}
			return nil
		})
	})
	if err != nil {
		return Record{}, err
	}
	if !found {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// Update writes an updated copy of the record back under its original
// sequence key, preserving list order.
func (s *Store) Update(rec Record) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		folders := tx.Bucket(FoldersBucket)
		if folders == nil {
			return fmt.Errorf("folders bucket not found")
		}

		key, err := findKey(folders, rec.ID)
		if err != nil {
			return err
		}

		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if err := folders.Put(key, data); err != nil {
			return err
		}
		return touchModified(tx)
	})
}

// Remove deletes the record with the given id from tracking. The directory
// or artifact on disk is untouched.
func (s *Store) Remove(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		folders := tx.Bucket(FoldersBucket)
		if folders == nil {
			return fmt.Errorf("folders bucket not found")
		}

		key, err := findKey(folders, id)
		if err != nil {
			return err
		}
		if err := folders.Delete(key); err != nil {
			return err
		}
		return touchModified(tx)
	})
}

// List returns all records in insertion order
func (s *Store) List() ([]Record, error) {
	var records []Record
	err := s.db.View(func(tx *bolt.Tx) error {
		folders := tx.Bucket(FoldersBucket)
		if folders == nil {
			return fmt.Errorf("folders bucket not found")
		}
		return folders.ForEach(func(k, v []byte) error {
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			records = append(records, rec)
			return nil
		})
	})
	return records, err
}

// GetModified retrieves the last modified timestamp
func (s *Store) GetModified() (time.Time, error) {
	var modified time.Time
	err := s.db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config == nil {
			return fmt.Errorf("config bucket not found")
		}
		data := config.Get(ConfigModified)
		if data == nil {
			return fmt.Errorf("modified time not found")
		}
		return modified.UnmarshalBinary(data)
	})
	return modified, err
}

// SetVerifier stores the enrolled authorizer verifier parameters
func (s *Store) SetVerifier(v *auth.Verifier) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config == nil {
			return fmt.Errorf("config bucket not found")
		}
		if err := config.Put(ConfigAuthSalt, v.Salt); err != nil {
			return err
		}
		iters := make([]byte, 4)
		binary.BigEndian.PutUint32(iters, uint32(v.Iterations))
		if err := config.Put(ConfigAuthIters, iters); err != nil {
			return err
		}
		return config.Put(ConfigAuthVerifer, v.Hash)
	})
}

// GetVerifier retrieves the enrolled authorizer verifier parameters
func (s *Store) GetVerifier() (*auth.Verifier, error) {
	var v auth.Verifier
	err := s.db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config == nil {
			return auth.ErrNotEnrolled
		}
		salt := config.Get(ConfigAuthSalt)
		iters := config.Get(ConfigAuthIters)
		hash := config.Get(ConfigAuthVerifer)
		if salt == nil || iters == nil || len(iters) != 4 || hash == nil {
			return auth.ErrNotEnrolled
		}
		// Copies: slices are only valid during the transaction
		v.Salt = append([]byte(nil), salt...)
		v.Iterations = int(binary.BigEndian.Uint32(iters))
		v.Hash = append([]byte(nil), hash...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func findKey(folders *bolt.Bucket, id string) ([]byte, error) {
	var key []byte
	err := folders.ForEach(func(k, v []byte) error {
		if key != nil {
			return nil
		}
		var rec Record
		if err := json.Unmarshal(v, &rec); err != nil {
			return nil
		}
		if rec.ID == id {
			key = append([]byte(nil), k...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if key == nil {
		return nil, ErrNotFound
	}
	return key, nil
}

func touchModified(tx *bolt.Tx) error {
	config := tx.Bucket(ConfigBucket)
	if config == nil {
		return nil
	}
	now := time.Now()
	modified, _ := now.MarshalBinary()
	return config.Put(ConfigModified, modified)
}
