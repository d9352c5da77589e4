// Package mission runs the magnetometer processing chain for one spacecraft:
// concurrent acquisition of field, position and plasma moments, resampling
// onto a common uniform axis, mean-field subtraction, masking of the inner
// magnetosphere and the magnetosheath, and projection into mean-field
// coordinates (field-aligned, poloidal, toroidal).
//
// Acquisition goes through the Acquirer interface. The source subpackage
// reads CSV exports and the cache subpackage memoizes any Acquirer in a
// local store.
package mission
