package models

// ConflictSeverity classifies how badly a proposed slot collides with
// existing commitments.
type ConflictSeverity string

const (
	SeverityNone            ConflictSeverity = "none"
	SeverityBufferViolation ConflictSeverity = "buffer_violation"
	SeverityHardOverlap     ConflictSeverity = "hard_overlap"
)

// AffectedUser identifies whose busy blocks triggered a conflict.
type AffectedUser string

const (
	AffectedNone  AffectedUser = "none"
	AffectedUserA AffectedUser = "a"
	AffectedUserB AffectedUser = "b"
	AffectedBoth  AffectedUser = "both"
)

// ConflictRecord is the outcome of evaluating one proposed slot against
// both users' busy blocks.
type ConflictRecord struct {
	Slot              TimeInterval
	Severity          ConflictSeverity
	ConflictingBlocks []BusyBlock
	AffectedUser      AffectedUser
}
