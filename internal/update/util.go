package update

import "time"

// timeNow exists so view rendering tests can pin the clock.
var timeNow = time.Now
