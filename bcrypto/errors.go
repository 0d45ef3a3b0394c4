// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bcrypto

import "errors"

var ErrEmptyMessage = errors.New("bcrypto: cannot sign an empty message")
