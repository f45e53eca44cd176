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

package releases

import (
	"errors"
	"fmt"
)

var (
	// ErrFilePathIsBlank indicates a blank store file path was specified
	ErrFilePathIsBlank = errors.New("File path is blank")

	// ErrStoreBucketDoesNotExist indicates the database file is not a release store
	ErrStoreBucketDoesNotExist = errors.New("Release store bucket does not exist")

	// ErrReleaseIsNil indicates a nil release was submitted for recording
	ErrReleaseIsNil = errors.New("Release is nil")
)

func errStoreFilePathIsDir(filePath string) error {
	return fmt.Errorf("File path is a dir : %v", filePath)
}
