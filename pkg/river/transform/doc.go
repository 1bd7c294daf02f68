// Package transform implements the geometry stages that turn raw river
// features into clean, uniformly segmented channel lines.
//
// The stages run in this order:
//
//   - [Filter] and [Dissolve] optionally narrow and regroup loaded features
//   - [Explode] decomposes multi-part features into single lines
//   - [Snap] moves dangling downstream endpoints onto nearby channels
//   - [Planarize] splits lines at every shared point and re-joins chains
//   - [RecoverNames] restores the channel names planarization dropped
//   - [SegmentAll] cuts long channels into near-equal pieces
//
// Every stage is a pure function of its inputs: it never modifies the lines
// it receives and its output order depends only on input order, even for
// the stages that fan work out across goroutines.
package transform
