package fifoarena

import "github.com/pkg/errors"

// BlockSizeRangeError is the error returned from CheckBlockSizeBounds or other methods if the
// block size bounds being tested are unusable
var BlockSizeRangeError error = errors.New("block size bounds must satisfy 0 < min <= max <= 255")
