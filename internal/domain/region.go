package domain

import "sort"

// 每个地区所包含的服务器（cluster）
var Regions = map[string][]int32{
	"AUSTRALIA":            {171, 172},
	"AUSTRIA":              {192, 193, 191},
	"BRAZIL":               {201, 202, 204},
	"CHILE":                {241, 242},
	"DUBAI":                {161},
	"EUROPE":               {131, 132, 133, 134, 135, 136, 137, 138},
	"INDIA":                {261},
	"JAPAN":                {144, 145},
	"PERU":                 {251},
	"PW TELECOM GUANGDONG": {225},
	"PW TELECOM SHANGHAI":  {224},
	"PW TELECOM WUHAN":     {227},
	"PW TELECOM ZHEJIANG":  {223},
	"PW UNICOM":            {231},
	"PW UNICOM TIANJIN":    {232},
	"SINGAPORE":            {151, 152, 153, 154, 155, 156},
	"SOUTHAFRICA":          {211, 212, 213},
	"STOCKHOLM":            {181, 182, 183, 184, 185, 186, 187, 188},
	"US EAST":              {121, 122, 123, 124},
	"US WEST":              {112, 113, 111},
}

func RegionNames() []string {
	names := make([]string, 0, len(Regions))
	for name := range Regions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// 找出服务器所属的地区，找不到时返回空字符串
func RegionOf(cluster int32) string {
	for name, servers := range Regions {
		for _, s := range servers {
			if s == cluster {
				return name
			}
		}
	}
	return ""
}

type RegionServer struct {
	Cluster     int32 `json:"cluster"`
	PlayerCount int   `json:"playerCount"`
}

type RegionInfo struct {
	Name    string         `json:"name"`
	Servers []RegionServer `json:"servers"`
}
