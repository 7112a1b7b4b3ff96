package osutil

import (
	"os"
	"strconv"
	"strings"

	"github.com/pbnjay/memory"
)

// cgroup reports this value for limit_in_bytes when memory is unrestricted.
// See https://unix.stackexchange.com/questions/420906
const unrestrictedMemoryLimit = 9223372036854771712

const dockerMemoryLimitLocation = "/sys/fs/cgroup/memory/memory.limit_in_bytes"

// GetTotalMemory returns the total available memory size. The call is
// container-aware: a cgroup limit below the host total wins.
func GetTotalMemory() uint64 {
	totalMemory := memory.TotalMemory()

	cgroupLimit, err := os.ReadFile(dockerMemoryLimitLocation)
	if err == nil {
		dockerMemoryLimit, err := strconv.ParseUint(strings.TrimSpace(string(cgroupLimit)), 10, 64)
		if err == nil && dockerMemoryLimit != unrestrictedMemoryLimit && dockerMemoryLimit < totalMemory {
			totalMemory = dockerMemoryLimit
		}
	}

	return totalMemory
}
