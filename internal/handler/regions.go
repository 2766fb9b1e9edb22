package handler

import (
	"net/http"
	"strconv"

	"github.com/sysu-ecnc-dev/matchmaker/backend/internal/domain"
)

func (h *Handler) GetAllRegions(w http.ResponseWriter, r *http.Request) {
	counts, err := h.repository.CountPlayersByCluster()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	regions := make([]domain.RegionInfo, 0, len(domain.Regions))
	for _, name := range domain.RegionNames() {
		info := domain.RegionInfo{
			Name:    name,
			Servers: make([]domain.RegionServer, 0, len(domain.Regions[name])),
		}
		for _, cluster := range domain.Regions[name] {
			info.Servers = append(info.Servers, domain.RegionServer{
				Cluster:     cluster,
				PlayerCount: counts[cluster],
			})
		}
		regions = append(regions, info)
	}

	h.successResponse(w, r, "获取地区列表成功", regions)
}

func (h *Handler) GetPlayersByCluster(w http.ResponseWriter, r *http.Request) {
	clusterParam := r.URL.Query().Get("cluster")
	if clusterParam == "" {
		h.errorResponse(w, r, "请指定服务器")
		return
	}

	cluster, err := strconv.ParseInt(clusterParam, 10, 32)
	if err != nil {
		h.errorResponse(w, r, "服务器ID无效")
		return
	}

	if domain.RegionOf(int32(cluster)) == "" {
		h.errorResponse(w, r, "服务器不存在")
		return
	}

	players, err := h.repository.GetPlayersByCluster(int32(cluster))
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取玩家列表成功", players)
}
