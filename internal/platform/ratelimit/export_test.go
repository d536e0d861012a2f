// Copyright (c) 2026 Pals. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ratelimit

import "time"

// Evict exposes idle-client eviction to the black-box tests.
func (limiter *Local) Evict(now time.Time) int { return limiter.evict(now) }
