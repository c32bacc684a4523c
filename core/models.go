package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
	"github.com/google/uuid"
)

// ID is a unique identifier for corpus entities (sources and source chunks).
// It is generated using content-based hashing so repeated ingestion of the
// same content is idempotent.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// CheckID is a unique identifier for a similarity check job.
type CheckID = uuid.UUID

// NewCheckID generates a fresh random check identifier.
func NewCheckID() CheckID {
	return uuid.New()
}

// SourceType identifies the kind of reference source a chunk came from.
// The set is closed: providers are dispatched on this tag, never on free-form
// strings.
type SourceType int

const (
	// SourceTypeArticle represents a written reference article.
	SourceTypeArticle SourceType = iota + 1
	// SourceTypeYouTube represents a spoken-video transcript.
	SourceTypeYouTube
)

// String returns the wire form of the source type.
func (s SourceType) String() string {
	switch s {
	case SourceTypeArticle:
		return "articles"
	case SourceTypeYouTube:
		return "youtube"
	default:
		return "unknown"
	}
}

// ParseSourceType converts the wire form ("articles", "youtube") to a SourceType.
func ParseSourceType(s string) (SourceType, error) {
	switch s {
	case "articles":
		return SourceTypeArticle, nil
	case "youtube":
		return SourceTypeYouTube, nil
	default:
		return 0, ErrInvalidSourceType
	}
}

// SourceTypes lists every supported source type.
var SourceTypes = []SourceType{SourceTypeArticle, SourceTypeYouTube}

// Sensitivity selects the acceptance-threshold profile used to filter raw matches.
type Sensitivity int

const (
	// SensitivityLow accepts only high-confidence matches.
	SensitivityLow Sensitivity = iota + 1
	// SensitivityMedium accepts medium-confidence matches and above.
	SensitivityMedium
	// SensitivityHigh accepts low-confidence matches and above (most sensitive).
	SensitivityHigh
)

// String returns the wire form of the sensitivity level.
func (s Sensitivity) String() string {
	switch s {
	case SensitivityLow:
		return "low"
	case SensitivityMedium:
		return "medium"
	case SensitivityHigh:
		return "high"
	default:
		return "unknown"
	}
}

// ParseSensitivity converts the wire form ("low", "medium", "high") to a Sensitivity.
func ParseSensitivity(s string) (Sensitivity, error) {
	switch s {
	case "low":
		return SensitivityLow, nil
	case "medium":
		return SensitivityMedium, nil
	case "high":
		return SensitivityHigh, nil
	default:
		return 0, ErrInvalidSensitivity
	}
}

// RiskLevel is the discrete risk bucket derived from the weighted score.
type RiskLevel int

const (
	// RiskLow indicates little to no overlap signal.
	RiskLow RiskLevel = iota + 1
	// RiskMedium indicates a moderate overlap signal worth editorial review.
	RiskMedium
	// RiskHigh indicates a strong overlap signal.
	RiskHigh
)

// String returns the wire form of the risk level.
func (r RiskLevel) String() string {
	switch r {
	case RiskLow:
		return "low"
	case RiskMedium:
		return "medium"
	case RiskHigh:
		return "high"
	default:
		return "unknown"
	}
}

// SubmissionOptions holds the per-check options chosen by the caller.
type SubmissionOptions struct {
	Sources         []SourceType // Source categories to check against
	StoreEmbeddings bool         // Whether submission embeddings may be retained
}

// Submission represents a text under analysis. It is immutable once created.
type Submission struct {
	Text        string
	Language    string // Two-letter ISO 639-1 code
	Sensitivity Sensitivity
	Options     SubmissionOptions
	WordCount   int // Normalized word count, computed at submit time
}

// Chunk represents a bounded, overlapping word-window of a submission.
type Chunk struct {
	Index     int    // Ordinal position within the submission
	Text      string // Normalized chunk text
	StartWord int    // Word offset of the chunk start in the normalized text
	WordCount int
}

// SourceRecord represents a reference item in the corpus (article or video).
type SourceRecord struct {
	Id              ID
	Type            SourceType
	Title           string
	Identifier      string // URL or video ID
	WordCount       int
	DurationSeconds int // Video duration; zero for articles
	ChunkCount      int
	InsertedAt      time.Time
}

// SourceChunk represents a segment of a SourceRecord, carrying enough context
// to be scored without a further lookup.
type SourceChunk struct {
	Id          ID
	SourceId    ID
	SourceType  SourceType
	Index       int // Position within the source
	Text        string
	Timestamp   string // "MM:SS" offset for video sources; empty for articles
	Title       string
	Identifier  string
	TotalChunks int // Chunk count of the owning source, for coverage
	Vector      []float32
}

// Match represents one submission-chunk / source-chunk pairing above threshold.
type Match struct {
	Chunk       Chunk       // The submission chunk that matched
	SourceChunk SourceChunk // The source chunk it matched against
	Score       float32     // Cosine similarity, in [-1, 1]
}

// MatchedChunk is the per-pair detail retained on an aggregated match.
type MatchedChunk struct {
	SubmissionText string
	SourceText     string
	Score          float32
	Timestamp      string // Video offset, empty for articles
}

// AggregatedMatch is the per-source rollup of chunk-level matches.
// It is derived from a match set and never stored independently of it.
type AggregatedMatch struct {
	SourceId      ID
	SourceType    SourceType
	Title         string
	Identifier    string
	MaxScore      float32
	AvgScore      float32
	Coverage      float32 // Matched source chunks / total source chunks, in [0, 1]
	MatchCount    int
	WeightedScore float64 // 0-100
	RiskLevel     RiskLevel
	Snippet       string
	Explanation   string
	Matches       []MatchedChunk // Top pairings, for report detail
}

// CheckStatus is the lifecycle state of an asynchronous check job.
type CheckStatus int

const (
	// StatusPending means the check is queued and waiting for a worker.
	StatusPending CheckStatus = iota + 1
	// StatusProcessing means a worker has claimed the check.
	StatusProcessing
	// StatusCompleted means the check finished and a report is attached.
	StatusCompleted
	// StatusFailed means the check exhausted its attempts or hit a fatal error.
	StatusFailed
	// StatusCancelled means the caller cancelled the check before completion.
	StatusCancelled
	// StatusExpired means the retention TTL elapsed before the check completed.
	StatusExpired
)

// String returns the wire form of the status.
func (s CheckStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusProcessing:
		return "processing"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	case StatusCancelled:
		return "cancelled"
	case StatusExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Terminal reports whether the status admits no further transitions.
func (s CheckStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled, StatusExpired:
		return true
	default:
		return false
	}
}

// CanTransition reports whether moving from s to next is a legal lifecycle step.
// Transitions are monotonic: nothing leaves a terminal state. Pending may be
// claimed, cancelled, or expire. Processing may complete, fail, be cancelled,
// expire, or return to pending for a bounded retry.
func (s CheckStatus) CanTransition(next CheckStatus) bool {
	if s.Terminal() {
		return false
	}
	switch s {
	case StatusPending:
		return next == StatusProcessing || next == StatusCancelled || next == StatusExpired
	case StatusProcessing:
		return next == StatusPending || next == StatusCompleted || next == StatusFailed ||
			next == StatusCancelled || next == StatusExpired
	default:
		return false
	}
}

// Check represents one asynchronous similarity-analysis job and its state.
type Check struct {
	Id              CheckID
	Status          CheckStatus
	Submission      Submission
	ChunkCount      int
	SourcesChecked  int
	SourcesSkipped  int
	Attempts        int // Processing attempts consumed so far
	ErrorMessage    string
	CancelRequested bool
	CreatedAt       time.Time
	StartedAt       time.Time // Zero until first claimed
	CompletedAt     time.Time // Zero until terminal
	ExpiresAt       time.Time // Retention TTL boundary
}

// Report is the final output of a completed check.
type Report struct {
	CheckId        CheckID
	OverallScore   float64 // 0-100
	RiskLevel      RiskLevel
	Matches        []AggregatedMatch // Ordered per aggregation rules
	Summary        string
	SourcesChecked int
	SourcesSkipped int
	ChunkCount     int
	GeneratedAt    time.Time
}
