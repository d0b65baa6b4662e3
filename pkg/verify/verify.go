// Copyright 2026 the ferry authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package verify compares file contents after a transfer. Local pairs are
// byte-compared directly; when one side is remote the caller compares SHA-256
// digests instead.
package verify

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"

	"gitlab.com/tozd/go/errors"
)

const compareChunkSize = 8192

// Identical reports whether two local files have the same size and content.
// A size mismatch returns false without reading either file.
func Identical(a, b string) (bool, error) {
	infoA, err := os.Stat(a)
	if err != nil {
		return false, errors.Errorf("stating %s: %w", a, err)
	}
	infoB, err := os.Stat(b)
	if err != nil {
		return false, errors.Errorf("stating %s: %w", b, err)
	}
	if infoA.Size() != infoB.Size() {
		return false, nil
	}

	fa, err := os.Open(a)
	if err != nil {
		return false, errors.Errorf("opening %s: %w", a, err)
	}
	defer fa.Close()

	fb, err := os.Open(b)
	if err != nil {
		return false, errors.Errorf("opening %s: %w", b, err)
	}
	defer fb.Close()

	bufA := make([]byte, compareChunkSize)
	bufB := make([]byte, compareChunkSize)

	for {
		nA, errA := io.ReadFull(fa, bufA)
		nB, errB := io.ReadFull(fb, bufB)

		if nA != nB || !bytes.Equal(bufA[:nA], bufB[:nB]) {
			return false, nil
		}

		endA := errA == io.EOF || errA == io.ErrUnexpectedEOF
		endB := errB == io.EOF || errB == io.ErrUnexpectedEOF

		switch {
		case endA && endB:
			return true, nil
		case errA != nil && !endA:
			return false, errors.Errorf("reading %s: %w", a, errA)
		case errB != nil && !endB:
			return false, errors.Errorf("reading %s: %w", b, errB)
		case endA != endB:
			return false, nil
		}
	}
}

// FileDigest returns the lowercase hex SHA-256 digest of a local file.
func FileDigest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", errors.Errorf("hashing %s: %w", path, err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
