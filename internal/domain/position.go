package domain

type Position int32

const (
	PositionCarry    Position = 1
	PositionMidlaner Position = 2
	PositionOfflaner Position = 3
	PositionRoamer   Position = 4
	PositionSupport  Position = 5
)

// 一支队伍的人数，同时也是位置的数量
const TeamSize = 5

var Positions = []Position{
	PositionCarry,
	PositionMidlaner,
	PositionOfflaner,
	PositionRoamer,
	PositionSupport,
}

var positionNames = map[Position]string{
	PositionCarry:    "Carry",
	PositionMidlaner: "Midlaner",
	PositionOfflaner: "Offlaner",
	PositionRoamer:   "Roamer",
	PositionSupport:  "Support",
}

func (p Position) Valid() bool {
	return p >= PositionCarry && p <= PositionSupport
}

func (p Position) String() string {
	if name, ok := positionNames[p]; ok {
		return name
	}
	return "Unknown"
}

type Team string

const (
	TeamRadiant Team = "Radiant"
	TeamDire    Team = "Dire"
)
