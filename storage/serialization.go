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


package storage

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/simcheck/core"
)

// Binary record encoding in MUS format. Serializers are hand-written against
// the mus-go primitive serializers; field order is the record declaration
// order and is part of the stored format.

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, varint.Uint64.Size(uint64(id)))
	varint.Uint64.Marshal(uint64(id), buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	v, _, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return core.ID(v), nil
}

// --- time ---

func timeMicro(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMicro()
}

func sizeTime(t time.Time) int {
	return varint.Int64.Size(timeMicro(t))
}

func marshalTime(t time.Time, bs []byte) int {
	return varint.Int64.Marshal(timeMicro(t), bs)
}

func unmarshalTime(bs []byte) (time.Time, int, error) {
	v, n, err := varint.Int64.Unmarshal(bs)
	if err != nil || v == 0 {
		return time.Time{}, n, err
	}
	return time.UnixMicro(v).UTC(), n, nil
}

// --- float32 slice ---

func sizeFloat32s(v []float32) int {
	return varint.Int.Size(len(v)) + len(v)*raw.Float32.Size(0)
}

func marshalFloat32s(v []float32, bs []byte) int {
	n := varint.Int.Marshal(len(v), bs)
	for _, f := range v {
		n += raw.Float32.Marshal(f, bs[n:])
	}
	return n
}

func unmarshalFloat32s(bs []byte) ([]float32, int, error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if length < 0 || length*4 > len(bs)-n {
		return nil, n, ErrTruncatedData
	}
	if length == 0 {
		return nil, n, nil
	}
	v := make([]float32, length)
	for i := range v {
		f, m, err := raw.Float32.Unmarshal(bs[n:])
		n += m
		if err != nil {
			return nil, n, err
		}
		v[i] = f
	}
	return v, n, nil
}

// --- Submission ---

func sizeSubmission(s *core.Submission) int {
	size := ord.String.Size(s.Text) +
		ord.String.Size(s.Language) +
		varint.Int.Size(int(s.Sensitivity)) +
		varint.Int.Size(len(s.Options.Sources)) +
		ord.Bool.Size(s.Options.StoreEmbeddings) +
		varint.Int.Size(s.WordCount)
	for _, st := range s.Options.Sources {
		size += varint.Int.Size(int(st))
	}
	return size
}

func marshalSubmission(s *core.Submission, bs []byte) int {
	n := ord.String.Marshal(s.Text, bs)
	n += ord.String.Marshal(s.Language, bs[n:])
	n += varint.Int.Marshal(int(s.Sensitivity), bs[n:])
	n += varint.Int.Marshal(len(s.Options.Sources), bs[n:])
	for _, st := range s.Options.Sources {
		n += varint.Int.Marshal(int(st), bs[n:])
	}
	n += ord.Bool.Marshal(s.Options.StoreEmbeddings, bs[n:])
	n += varint.Int.Marshal(s.WordCount, bs[n:])
	return n
}

func unmarshalSubmission(bs []byte) (core.Submission, int, error) {
	var s core.Submission
	var err error
	var n, m int

	s.Text, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return s, n, err
	}
	s.Language, m, err = ord.String.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return s, n, err
	}
	sens, m, err := varint.Int.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return s, n, err
	}
	s.Sensitivity = core.Sensitivity(sens)

	count, m, err := varint.Int.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return s, n, err
	}
	if count < 0 || count > len(bs)-n {
		return s, n, ErrTruncatedData
	}
	for i := 0; i < count; i++ {
		st, m, err := varint.Int.Unmarshal(bs[n:])
		n += m
		if err != nil {
			return s, n, err
		}
		s.Options.Sources = append(s.Options.Sources, core.SourceType(st))
	}

	s.Options.StoreEmbeddings, m, err = ord.Bool.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return s, n, err
	}
	s.WordCount, m, err = varint.Int.Unmarshal(bs[n:])
	n += m
	return s, n, err
}

// --- SourceRecord ---

func sizeSourceRecord(r *core.SourceRecord) int {
	return varint.Uint64.Size(uint64(r.Id)) +
		varint.Int.Size(int(r.Type)) +
		ord.String.Size(r.Title) +
		ord.String.Size(r.Identifier) +
		varint.Int.Size(r.WordCount) +
		varint.Int.Size(r.DurationSeconds) +
		varint.Int.Size(r.ChunkCount) +
		sizeTime(r.InsertedAt)
}

// MarshalSourceRecord serializes a SourceRecord to bytes.
func MarshalSourceRecord(r *core.SourceRecord) []byte {
	buf := make([]byte, sizeSourceRecord(r))
	n := varint.Uint64.Marshal(uint64(r.Id), buf)
	n += varint.Int.Marshal(int(r.Type), buf[n:])
	n += ord.String.Marshal(r.Title, buf[n:])
	n += ord.String.Marshal(r.Identifier, buf[n:])
	n += varint.Int.Marshal(r.WordCount, buf[n:])
	n += varint.Int.Marshal(r.DurationSeconds, buf[n:])
	n += varint.Int.Marshal(r.ChunkCount, buf[n:])
	marshalTime(r.InsertedAt, buf[n:])
	return buf
}

// UnmarshalSourceRecord deserializes a SourceRecord from bytes.
func UnmarshalSourceRecord(data []byte) (*core.SourceRecord, error) {
	r := &core.SourceRecord{}
	var err error
	var n, m int

	id, n, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	r.Id = core.ID(id)

	typ, m, err := varint.Int.Unmarshal(data[n:])
	n += m
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	r.Type = core.SourceType(typ)

	for _, field := range []*string{&r.Title, &r.Identifier} {
		*field, m, err = ord.String.Unmarshal(data[n:])
		n += m
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
		}
	}
	for _, field := range []*int{&r.WordCount, &r.DurationSeconds, &r.ChunkCount} {
		*field, m, err = varint.Int.Unmarshal(data[n:])
		n += m
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
		}
	}
	r.InsertedAt, _, err = unmarshalTime(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return r, nil
}

// --- SourceChunk ---

func sizeSourceChunk(c *core.SourceChunk) int {
	return varint.Uint64.Size(uint64(c.Id)) +
		varint.Uint64.Size(uint64(c.SourceId)) +
		varint.Int.Size(int(c.SourceType)) +
		varint.Int.Size(c.Index) +
		ord.String.Size(c.Text) +
		ord.String.Size(c.Timestamp) +
		ord.String.Size(c.Title) +
		ord.String.Size(c.Identifier) +
		varint.Int.Size(c.TotalChunks) +
		sizeFloat32s(c.Vector)
}

func marshalSourceChunk(c *core.SourceChunk, bs []byte) int {
	n := varint.Uint64.Marshal(uint64(c.Id), bs)
	n += varint.Uint64.Marshal(uint64(c.SourceId), bs[n:])
	n += varint.Int.Marshal(int(c.SourceType), bs[n:])
	n += varint.Int.Marshal(c.Index, bs[n:])
	n += ord.String.Marshal(c.Text, bs[n:])
	n += ord.String.Marshal(c.Timestamp, bs[n:])
	n += ord.String.Marshal(c.Title, bs[n:])
	n += ord.String.Marshal(c.Identifier, bs[n:])
	n += varint.Int.Marshal(c.TotalChunks, bs[n:])
	n += marshalFloat32s(c.Vector, bs[n:])
	return n
}

func unmarshalSourceChunk(bs []byte) (core.SourceChunk, int, error) {
	var c core.SourceChunk
	var err error
	var n, m int

	id, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return c, n, err
	}
	c.Id = core.ID(id)

	srcID, m, err := varint.Uint64.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return c, n, err
	}
	c.SourceId = core.ID(srcID)

	typ, m, err := varint.Int.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return c, n, err
	}
	c.SourceType = core.SourceType(typ)

	c.Index, m, err = varint.Int.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return c, n, err
	}
	for _, field := range []*string{&c.Text, &c.Timestamp, &c.Title, &c.Identifier} {
		*field, m, err = ord.String.Unmarshal(bs[n:])
		n += m
		if err != nil {
			return c, n, err
		}
	}
	c.TotalChunks, m, err = varint.Int.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return c, n, err
	}
	c.Vector, m, err = unmarshalFloat32s(bs[n:])
	n += m
	return c, n, err
}

// MarshalSourceChunk serializes a SourceChunk to bytes.
func MarshalSourceChunk(c *core.SourceChunk) []byte {
	buf := make([]byte, sizeSourceChunk(c))
	marshalSourceChunk(c, buf)
	return buf
}

// UnmarshalSourceChunk deserializes a SourceChunk from bytes.
func UnmarshalSourceChunk(data []byte) (*core.SourceChunk, error) {
	c, _, err := unmarshalSourceChunk(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &c, nil
}

// MarshalSourceChunks serializes a chunk slice, used for index snapshots.
func MarshalSourceChunks(chunks []core.SourceChunk) []byte {
	size := varint.Int.Size(len(chunks))
	for i := range chunks {
		size += sizeSourceChunk(&chunks[i])
	}
	buf := make([]byte, size)
	n := varint.Int.Marshal(len(chunks), buf)
	for i := range chunks {
		n += marshalSourceChunk(&chunks[i], buf[n:])
	}
	return buf
}

// UnmarshalSourceChunks deserializes a chunk slice.
func UnmarshalSourceChunks(data []byte) ([]core.SourceChunk, error) {
	count, n, err := varint.Int.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	if count < 0 || count > len(data)-n {
		return nil, ErrTruncatedData
	}
	chunks := make([]core.SourceChunk, 0, count)
	for i := 0; i < count; i++ {
		c, m, err := unmarshalSourceChunk(data[n:])
		n += m
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
		}
		chunks = append(chunks, c)
	}
	return chunks, nil
}

// --- Check ---

func sizeCheck(c *core.Check) int {
	return ord.String.Size(c.Id.String()) +
		varint.Int.Size(int(c.Status)) +
		sizeSubmission(&c.Submission) +
		varint.Int.Size(c.ChunkCount) +
		varint.Int.Size(c.SourcesChecked) +
		varint.Int.Size(c.SourcesSkipped) +
		varint.Int.Size(c.Attempts) +
		ord.String.Size(c.ErrorMessage) +
		ord.Bool.Size(c.CancelRequested) +
		sizeTime(c.CreatedAt) +
		sizeTime(c.StartedAt) +
		sizeTime(c.CompletedAt) +
		sizeTime(c.ExpiresAt)
}

// MarshalCheck serializes a Check to bytes.
func MarshalCheck(c *core.Check) []byte {
	buf := make([]byte, sizeCheck(c))
	n := ord.String.Marshal(c.Id.String(), buf)
	n += varint.Int.Marshal(int(c.Status), buf[n:])
	n += marshalSubmission(&c.Submission, buf[n:])
	n += varint.Int.Marshal(c.ChunkCount, buf[n:])
	n += varint.Int.Marshal(c.SourcesChecked, buf[n:])
	n += varint.Int.Marshal(c.SourcesSkipped, buf[n:])
	n += varint.Int.Marshal(c.Attempts, buf[n:])
	n += ord.String.Marshal(c.ErrorMessage, buf[n:])
	n += ord.Bool.Marshal(c.CancelRequested, buf[n:])
	n += marshalTime(c.CreatedAt, buf[n:])
	n += marshalTime(c.StartedAt, buf[n:])
	n += marshalTime(c.CompletedAt, buf[n:])
	marshalTime(c.ExpiresAt, buf[n:])
	return buf
}

// UnmarshalCheck deserializes a Check from bytes.
func UnmarshalCheck(data []byte) (*core.Check, error) {
	c := &core.Check{}
	var err error
	var n, m int

	idStr, n, err := ord.String.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	c.Id, err = uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}

	status, m, err := varint.Int.Unmarshal(data[n:])
	n += m
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	c.Status = core.CheckStatus(status)

	c.Submission, m, err = unmarshalSubmission(data[n:])
	n += m
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}

	for _, field := range []*int{&c.ChunkCount, &c.SourcesChecked, &c.SourcesSkipped, &c.Attempts} {
		*field, m, err = varint.Int.Unmarshal(data[n:])
		n += m
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
		}
	}

	c.ErrorMessage, m, err = ord.String.Unmarshal(data[n:])
	n += m
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	c.CancelRequested, m, err = ord.Bool.Unmarshal(data[n:])
	n += m
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}

	for _, field := range []*time.Time{&c.CreatedAt, &c.StartedAt, &c.CompletedAt, &c.ExpiresAt} {
		*field, m, err = unmarshalTime(data[n:])
		n += m
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
		}
	}
	return c, nil
}

// --- MatchedChunk / AggregatedMatch / Report ---

func sizeMatchedChunk(mc *core.MatchedChunk) int {
	return ord.String.Size(mc.SubmissionText) +
		ord.String.Size(mc.SourceText) +
		raw.Float32.Size(mc.Score) +
		ord.String.Size(mc.Timestamp)
}

func marshalMatchedChunk(mc *core.MatchedChunk, bs []byte) int {
	n := ord.String.Marshal(mc.SubmissionText, bs)
	n += ord.String.Marshal(mc.SourceText, bs[n:])
	n += raw.Float32.Marshal(mc.Score, bs[n:])
	n += ord.String.Marshal(mc.Timestamp, bs[n:])
	return n
}

func unmarshalMatchedChunk(bs []byte) (core.MatchedChunk, int, error) {
	var mc core.MatchedChunk
	var err error
	var n, m int

	mc.SubmissionText, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return mc, n, err
	}
	mc.SourceText, m, err = ord.String.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return mc, n, err
	}
	mc.Score, m, err = raw.Float32.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return mc, n, err
	}
	mc.Timestamp, m, err = ord.String.Unmarshal(bs[n:])
	n += m
	return mc, n, err
}

func sizeAggregatedMatch(a *core.AggregatedMatch) int {
	size := varint.Uint64.Size(uint64(a.SourceId)) +
		varint.Int.Size(int(a.SourceType)) +
		ord.String.Size(a.Title) +
		ord.String.Size(a.Identifier) +
		raw.Float32.Size(a.MaxScore) +
		raw.Float32.Size(a.AvgScore) +
		raw.Float32.Size(a.Coverage) +
		varint.Int.Size(a.MatchCount) +
		raw.Float64.Size(a.WeightedScore) +
		varint.Int.Size(int(a.RiskLevel)) +
		ord.String.Size(a.Snippet) +
		ord.String.Size(a.Explanation) +
		varint.Int.Size(len(a.Matches))
	for i := range a.Matches {
		size += sizeMatchedChunk(&a.Matches[i])
	}
	return size
}

func marshalAggregatedMatch(a *core.AggregatedMatch, bs []byte) int {
	n := varint.Uint64.Marshal(uint64(a.SourceId), bs)
	n += varint.Int.Marshal(int(a.SourceType), bs[n:])
	n += ord.String.Marshal(a.Title, bs[n:])
	n += ord.String.Marshal(a.Identifier, bs[n:])
	n += raw.Float32.Marshal(a.MaxScore, bs[n:])
	n += raw.Float32.Marshal(a.AvgScore, bs[n:])
	n += raw.Float32.Marshal(a.Coverage, bs[n:])
	n += varint.Int.Marshal(a.MatchCount, bs[n:])
	n += raw.Float64.Marshal(a.WeightedScore, bs[n:])
	n += varint.Int.Marshal(int(a.RiskLevel), bs[n:])
	n += ord.String.Marshal(a.Snippet, bs[n:])
	n += ord.String.Marshal(a.Explanation, bs[n:])
	n += varint.Int.Marshal(len(a.Matches), bs[n:])
	for i := range a.Matches {
		n += marshalMatchedChunk(&a.Matches[i], bs[n:])
	}
	return n
}

func unmarshalAggregatedMatch(bs []byte) (core.AggregatedMatch, int, error) {
	var a core.AggregatedMatch
	var err error
	var n, m int

	id, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return a, n, err
	}
	a.SourceId = core.ID(id)

	typ, m, err := varint.Int.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return a, n, err
	}
	a.SourceType = core.SourceType(typ)

	for _, field := range []*string{&a.Title, &a.Identifier} {
		*field, m, err = ord.String.Unmarshal(bs[n:])
		n += m
		if err != nil {
			return a, n, err
		}
	}
	for _, field := range []*float32{&a.MaxScore, &a.AvgScore, &a.Coverage} {
		*field, m, err = raw.Float32.Unmarshal(bs[n:])
		n += m
		if err != nil {
			return a, n, err
		}
	}
	a.MatchCount, m, err = varint.Int.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return a, n, err
	}
	a.WeightedScore, m, err = raw.Float64.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return a, n, err
	}
	risk, m, err := varint.Int.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return a, n, err
	}
	a.RiskLevel = core.RiskLevel(risk)

	for _, field := range []*string{&a.Snippet, &a.Explanation} {
		*field, m, err = ord.String.Unmarshal(bs[n:])
		n += m
		if err != nil {
			return a, n, err
		}
	}

	count, m, err := varint.Int.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return a, n, err
	}
	if count < 0 || count > len(bs)-n {
		return a, n, ErrTruncatedData
	}
	for i := 0; i < count; i++ {
		mc, m, err := unmarshalMatchedChunk(bs[n:])
		n += m
		if err != nil {
			return a, n, err
		}
		a.Matches = append(a.Matches, mc)
	}
	return a, n, nil
}

func sizeReport(r *core.Report) int {
	size := ord.String.Size(r.CheckId.String()) +
		raw.Float64.Size(r.OverallScore) +
		varint.Int.Size(int(r.RiskLevel)) +
		varint.Int.Size(len(r.Matches)) +
		ord.String.Size(r.Summary) +
		varint.Int.Size(r.SourcesChecked) +
		varint.Int.Size(r.SourcesSkipped) +
		varint.Int.Size(r.ChunkCount) +
		sizeTime(r.GeneratedAt)
	for i := range r.Matches {
		size += sizeAggregatedMatch(&r.Matches[i])
	}
	return size
}

// MarshalReport serializes a Report to bytes.
func MarshalReport(r *core.Report) []byte {
	buf := make([]byte, sizeReport(r))
	n := ord.String.Marshal(r.CheckId.String(), buf)
	n += raw.Float64.Marshal(r.OverallScore, buf[n:])
	n += varint.Int.Marshal(int(r.RiskLevel), buf[n:])
	n += varint.Int.Marshal(len(r.Matches), buf[n:])
	for i := range r.Matches {
		n += marshalAggregatedMatch(&r.Matches[i], buf[n:])
	}
	n += ord.String.Marshal(r.Summary, buf[n:])
	n += varint.Int.Marshal(r.SourcesChecked, buf[n:])
	n += varint.Int.Marshal(r.SourcesSkipped, buf[n:])
	n += varint.Int.Marshal(r.ChunkCount, buf[n:])
	marshalTime(r.GeneratedAt, buf[n:])
	return buf
}

// UnmarshalReport deserializes a Report from bytes.
func UnmarshalReport(data []byte) (*core.Report, error) {
	r := &core.Report{}
	var err error
	var n, m int

	idStr, n, err := ord.String.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	r.CheckId, err = uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}

	r.OverallScore, m, err = raw.Float64.Unmarshal(data[n:])
	n += m
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	risk, m, err := varint.Int.Unmarshal(data[n:])
	n += m
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	r.RiskLevel = core.RiskLevel(risk)

	count, m, err := varint.Int.Unmarshal(data[n:])
	n += m
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	if count < 0 || count > len(data)-n {
		return nil, ErrTruncatedData
	}
	for i := 0; i < count; i++ {
		a, m, err := unmarshalAggregatedMatch(data[n:])
		n += m
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
		}
		r.Matches = append(r.Matches, a)
	}

	r.Summary, m, err = ord.String.Unmarshal(data[n:])
	n += m
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	for _, field := range []*int{&r.SourcesChecked, &r.SourcesSkipped, &r.ChunkCount} {
		*field, m, err = varint.Int.Unmarshal(data[n:])
		n += m
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
		}
	}
	r.GeneratedAt, _, err = unmarshalTime(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return r, nil
}
