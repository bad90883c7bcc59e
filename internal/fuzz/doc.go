// Package fuzztests houses Go fuzz harnesses for the decode and lowering
// pipeline (bytes -> hir.Decode -> mir.LowerFunc -> mir.ValidateFunc).
// Decoding may reject any input; whatever decodes must lower without
// panicking, and whatever lowers must validate, before and after
// SimplifyCFG.
package fuzztests
