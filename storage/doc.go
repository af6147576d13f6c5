// Copyright 2025 Poiesic Systems
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

// Package storage defines the durable entry store behind the in-memory
// vector index.
//
// The index itself is rebuilt on startup, so the store is the system of
// record for embeddings: every indexed entry is written here first, and
// ScanEntries replays them all into a fresh index after a restart.
// Entries are keyed by record identity (dataSource, recordID); writing a
// key again replaces its entry.
//
// The interfaces here are storage-agnostic. The badger subpackage
// provides the BadgerDB implementation used in production, which also
// serves tests through an in-memory instance. Serialization uses the
// MUS binary format defined in the core package.
package storage
