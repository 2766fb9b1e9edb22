package matchmaker

import "errors"

var (
	ErrInsufficientCandidates = errors.New("服务器中的候选玩家不足 10 人")
	ErrNoValidPopulation      = errors.New("无法生成任何合法的对局")
	ErrDegenerateGroup        = errors.New("服务器中没有足够的玩家来修复对局")
	ErrInvalidParameters      = errors.New("参数不合法")
	ErrInvalidPlayer          = errors.New("玩家数据不合法")
	ErrCanceled               = errors.New("匹配已被取消")
	ErrUnknownRegion          = errors.New("地区不存在")
	ErrServerNotInRegion      = errors.New("服务器不属于该地区")
)

// 对局不合法的原因
var (
	ErrWrongSize       = errors.New("对局人数不是 10 人")
	ErrUnknownPlayer   = errors.New("对局中存在未知玩家")
	ErrDuplicatePlayer = errors.New("对局中存在重复玩家")
	ErrMixedCluster    = errors.New("对局中的玩家不在同一个服务器")
)

// 初始化单个对局时，某个位置找不到合适的玩家
var errNoValidMatch = errors.New("没有玩家可以担任该位置")
