package matchmaker

import "math/rand"

// 调用方传入 seed 为 0 时使用的种子
const defaultSeed int64 = 1

// math/rand.Rand 不是并发安全的，每个 goroutine 都必须持有自己的 *rand.Rand
func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = defaultSeed
	}
	return rand.New(rand.NewSource(seed))
}

// SplitMix64 混合，由父种子和流编号得到互不相关的子种子
func deriveSeed(parent int64, stream uint64) int64 {
	x := uint64(parent) ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31
	return int64(x)
}

// 第 gen 代中第 index 组个体使用的随机数生成器
// 只取决于 (seed, gen, index)，与 goroutine 的调度顺序无关
func streamRand(seed int64, gen int, index int) *rand.Rand {
	return newRand(deriveSeed(deriveSeed(seed, uint64(gen)), uint64(index)))
}
