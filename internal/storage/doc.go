/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */


// Package storage persists segmentation documents in an embedded SQLite
// database (pure Go driver, WAL mode). A document is one page: its lines with
// baseline, mask, order and text direction, and its regions.
// Sync keeps a store in step with a live editor by listening to its
// notifications and writing the assigned row ids back into the correlation
// context of each entity.
package storage
