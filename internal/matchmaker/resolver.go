package matchmaker

import (
	"fmt"
	"math/rand"
	"slices"

	"github.com/sysu-ecnc-dev/matchmaker/backend/internal/domain"
)

// ResolveCluster 确定本次匹配使用的服务器
//   - 指定了 server 时，检查它是否属于 region
//   - random 为 true 时返回 0，表示不固定服务器
//   - 否则从 region 的服务器中随机选一个
func ResolveCluster(region string, server int32, random bool, rng *rand.Rand) (int32, error) {
	servers, ok := domain.Regions[region]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownRegion, region)
	}

	if server != 0 {
		if !slices.Contains(servers, server) {
			return 0, fmt.Errorf("%w: 服务器 %d 不属于 %s", ErrServerNotInRegion, server, region)
		}
		return server, nil
	}

	if random {
		return 0, nil
	}

	return servers[rng.Intn(len(servers))], nil
}
