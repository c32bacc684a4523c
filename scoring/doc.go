// Package scoring converts raw chunk similarity matches into a verdict.
// Matches are filtered by the cutoff the submission's sensitivity selects,
// grouped per source, rolled up into composite 0-100 scores, and bucketed
// into risk levels. The overall verdict is the score of the strongest
// source.
package scoring
