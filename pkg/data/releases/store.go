// Copyright (c) 2026 The Capstan Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package releases persists the container's release deployment history.
//
// Deployments are stored in a bbolt database : each recorded deployment is a
// JSON snapshot of the release manifest keyed by a monotonic sequence number.
package releases

import (
	"encoding/binary"
	"os"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/oceanops/capstan/pkg/manifest"
	bolt "go.etcd.io/bbolt"
)

const (
	READ_WRITE_MODE os.FileMode = 0600

	CREATED = "created"
)

var (
	storeBucket       = []byte("releases")
	deploymentsBucket = []byte("deployments")

	json = jsoniter.ConfigCompatibleWithStandardLibrary
)

// Deployment is a recorded release deployment
type Deployment struct {
	// Seq is the monotonic deployment sequence number, starting at 1
	Seq uint64 `json:"seq"`

	// Time is when the deployment was recorded
	Time time.Time `json:"time"`

	Release *manifest.Release `json:"release"`
}

// Store records release deployments.
// Store implementations are safe for concurrent use.
type Store interface {
	// Record stores a snapshot of the deployed release and returns the recorded deployment
	Record(release *manifest.Release) (*Deployment, error)

	// History returns all recorded deployments, oldest first
	History() ([]*Deployment, error)

	// Latest returns the most recent deployment - nil if none have been recorded
	Latest() (*Deployment, error)

	// Created returns when the store was created, or an error if it cannot be determined
	Created() (time.Time, error)

	// Close releases all database resources. All transactions must be closed before closing the store.
	Close() error
}

// OpenStore opens the release store in read-write mode.
// The filePath must point to a bbolt file that was created via CreateStore.
func OpenStore(filePath string) (Store, error) {
	filePath = strings.TrimSpace(filePath)
	if filePath == "" {
		return nil, ErrFilePathIsBlank
	}

	if stat, err := os.Stat(filePath); err != nil {
		return nil, err
	} else if stat.IsDir() {
		return nil, errStoreFilePathIsDir(filePath)
	}

	db, err := bolt.Open(filePath, READ_WRITE_MODE, &bolt.Options{Timeout: time.Second * 30})
	if err != nil {
		return nil, err
	}

	err = db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(storeBucket) == nil {
			return ErrStoreBucketDoesNotExist
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &store{db}, nil
}

// CreateStore creates a new release store at the specified path.
// If the store already exists, then it is simply opened.
func CreateStore(filePath string) (Store, error) {
	filePath = strings.TrimSpace(filePath)
	if filePath == "" {
		return nil, ErrFilePathIsBlank
	}

	db, err := bolt.Open(filePath, READ_WRITE_MODE, &bolt.Options{Timeout: time.Second * 30})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		root, err := tx.CreateBucketIfNotExists(storeBucket)
		if err != nil {
			return err
		}
		if _, err := root.CreateBucketIfNotExists(deploymentsBucket); err != nil {
			return err
		}

		// set the created timestamp
		if root.Get([]byte(CREATED)) == nil {
			now, _ := time.Now().MarshalBinary() // ignoring err, because this will never err
			return root.Put([]byte(CREATED), now)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &store{db}, nil
}

type store struct {
	db *bolt.DB
}

func (a *store) Record(release *manifest.Release) (*Deployment, error) {
	if release == nil {
		return nil, ErrReleaseIsNil
	}

	deployment := &Deployment{Time: time.Now(), Release: release}
	err := a.db.Update(func(tx *bolt.Tx) error {
		deployments := a.deployments(tx)
		if deployments == nil {
			return ErrStoreBucketDoesNotExist
		}
		seq, err := deployments.NextSequence()
		if err != nil {
			return err
		}
		deployment.Seq = seq
		value, err := json.Marshal(deployment)
		if err != nil {
			return err
		}
		return deployments.Put(seqKey(seq), value)
	})
	if err != nil {
		return nil, err
	}
	return deployment, nil
}

func (a *store) History() ([]*Deployment, error) {
	var history []*Deployment
	err := a.db.View(func(tx *bolt.Tx) error {
		deployments := a.deployments(tx)
		if deployments == nil {
			return ErrStoreBucketDoesNotExist
		}
		cursor := deployments.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			deployment := &Deployment{}
			if err := json.Unmarshal(v, deployment); err != nil {
				return err
			}
			history = append(history, deployment)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return history, nil
}

func (a *store) Latest() (*Deployment, error) {
	var latest *Deployment
	err := a.db.View(func(tx *bolt.Tx) error {
		deployments := a.deployments(tx)
		if deployments == nil {
			return ErrStoreBucketDoesNotExist
		}
		k, v := deployments.Cursor().Last()
		if k == nil {
			return nil
		}
		latest = &Deployment{}
		return json.Unmarshal(v, latest)
	})
	if err != nil {
		return nil, err
	}
	return latest, nil
}

func (a *store) Created() (time.Time, error) {
	t := time.Time{}
	err := a.db.View(func(tx *bolt.Tx) error {
		root := tx.Bucket(storeBucket)
		if root == nil {
			return ErrStoreBucketDoesNotExist
		}
		return t.UnmarshalBinary(root.Get([]byte(CREATED)))
	})
	return t, err
}

func (a *store) Close() error {
	return a.db.Close()
}

func (a *store) deployments(tx *bolt.Tx) *bolt.Bucket {
	root := tx.Bucket(storeBucket)
	if root == nil {
		return nil
	}
	return root.Bucket(deploymentsBucket)
}

// seqKey encodes the sequence as a big-endian key so that deployments sort chronologically
func seqKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}
