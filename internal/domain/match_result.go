package domain

import "time"

type PartyMember struct {
	Account  string   `json:"account" validate:"required"`
	Position Position `json:"position" validate:"required,min=1,max=5"`
}

type MatchSlot struct {
	Slot               int           `json:"slot"`
	Team               Team          `json:"team"`
	Position           Position      `json:"position"`
	PositionName       string        `json:"positionName"`
	PlayerID           int64         `json:"playerID"`
	Account            string        `json:"account"`
	SkillScore         float64       `json:"skillScore"`
	PreferredPositions []Position    `json:"preferredPositions"`
	TotalMatches       int32         `json:"totalMatches"`
	Metrics            PlayerMetrics `json:"metrics"`
	FirstChoice        bool          `json:"firstChoice"` // 是否被分配到了最想打的位置
	Preferred          bool          `json:"preferred"`   // 是否被分配到了任意一个偏好位置
	IsParty            bool          `json:"isParty"`
}

type GenerationStats struct {
	Generation int     `json:"gen"`
	Min        float64 `json:"min"`
	Avg        float64 `json:"avg"`
	Max        float64 `json:"max"`
}

type MatchResult struct {
	Cluster        int32             `json:"cluster"`
	Region         string            `json:"region"`
	Fitness        float64           `json:"fitness"`
	FitnessPercent float64           `json:"fitnessPercent"`
	Breakdown      FitnessBreakdown  `json:"breakdown"`
	Slots          []MatchSlot       `json:"slots"`
	History        []GenerationStats `json:"history"`
	PopulationSize int               `json:"populationSize"`
	PartyTeam      Team              `json:"partyTeam,omitempty"`
	Seed           int64             `json:"seed"`
	ElapsedMs      int64             `json:"elapsedMs"`
}

type MatchJobStatus string

const (
	MatchJobPending MatchJobStatus = "pending"
	MatchJobRunning MatchJobStatus = "running"
	MatchJobDone    MatchJobStatus = "done"
	MatchJobFailed  MatchJobStatus = "failed"
)

// 匹配的运行参数，为 nil 的字段使用配置中的默认值
type MatchParameters struct {
	PopulationSize       *int     `json:"populationSize" validate:"omitempty,min=10"`
	Generations          *int     `json:"generations" validate:"omitempty,min=1"`
	CrossoverProbability *float64 `json:"crossoverProbability" validate:"omitempty,min=0,max=1"`
	MutationProbability  *float64 `json:"mutationProbability" validate:"omitempty,min=0,max=1"`
	GeneMutationRate     *float64 `json:"geneMutationRate" validate:"omitempty,min=0,max=1"`
	TournamentSize       *int     `json:"tournamentSize" validate:"omitempty,min=2"`
}

type MatchRequest struct {
	Region       string           `json:"region" validate:"required"`
	Server       int32            `json:"server" validate:"omitempty,min=1"`
	RandomServer bool             `json:"randomServer"` // 为 true 时不固定服务器，每次初始化都随机选择
	Seed         int64            `json:"seed"`
	Parameters   *MatchParameters `json:"parameters"`
	Party        []PartyMember    `json:"party" validate:"omitempty,max=5,dive"`
}

// 通过消息队列投递给 worker 的匹配任务
type MatchJob struct {
	ID        string       `json:"id"`
	Request   MatchRequest `json:"request"`
	CreatedAt time.Time    `json:"createdAt"`
}

type MatchJobState struct {
	ID        string         `json:"id"`
	Status    MatchJobStatus `json:"status"`
	Result    *MatchResult   `json:"result,omitempty"`
	Error     string         `json:"error,omitempty"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

type FitnessBreakdown struct {
	TeamSkillDiff     float64 `json:"teamSkillDiff"`
	PositionSkillDiff float64 `json:"positionSkillDiff"`
	FirstChoiceMisses int     `json:"firstChoiceMisses"`
	PreferenceMisses  int     `json:"preferenceMisses"`
	Penalty           float64 `json:"penalty"`
}
