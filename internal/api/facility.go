package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/clinic-server/internal/facility"
)

func createFloorHandler(repo facility.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateFloorRequest
		if err := decodeAndValidate(r, &req); err != nil {
			handleDomainError(w, err)
			return
		}

		f := &facility.Floor{ID: uuid.New(), Label: req.Label, Level: req.Level}
		if err := repo.CreateFloor(r.Context(), f); err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, FloorResponse{ID: f.ID, Label: f.Label, Level: f.Level})
	}
}

func listFloorsHandler(repo facility.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		floors, err := repo.ListFloors(r.Context())
		if err != nil {
			handleDomainError(w, err)
			return
		}

		resp := make([]FloorResponse, len(floors))
		for i, f := range floors {
			resp[i] = FloorResponse{ID: f.ID, Label: f.Label, Level: f.Level}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func createBlocHandler(repo facility.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateBlocRequest
		if err := decodeAndValidate(r, &req); err != nil {
			handleDomainError(w, err)
			return
		}

		floorID, _ := uuid.Parse(req.FloorID)
		b := &facility.Bloc{ID: uuid.New(), FloorID: floorID, Label: req.Label}
		if err := repo.CreateBloc(r.Context(), b); err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, BlocResponse{ID: b.ID, FloorID: b.FloorID, Label: b.Label})
	}
}

func listBlocsHandler(repo facility.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		floorID, err := uuid.Parse(r.URL.Query().Get("floor_id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_floor_id", "floor_id must be a valid UUID")
			return
		}

		blocs, err := repo.ListBlocsByFloor(r.Context(), floorID)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		resp := make([]BlocResponse, len(blocs))
		for i, b := range blocs {
			resp[i] = BlocResponse{ID: b.ID, FloorID: b.FloorID, Label: b.Label}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func createRoomHandler(repo facility.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateRoomRequest
		if err := decodeAndValidate(r, &req); err != nil {
			handleDomainError(w, err)
			return
		}

		blocID, _ := uuid.Parse(req.BlocID)
		room := &facility.Room{
			ID:        uuid.New(),
			BlocID:    blocID,
			Number:    req.Number,
			Capacity:  req.Capacity,
			UpdatedAt: time.Now(),
		}
		if err := repo.CreateRoom(r.Context(), room); err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toRoomResponse(room))
	}
}

func listRoomsHandler(repo facility.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blocID, err := uuid.Parse(r.URL.Query().Get("bloc_id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_bloc_id", "bloc_id must be a valid UUID")
			return
		}

		rooms, err := repo.ListRoomsByBloc(r.Context(), blocID)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		resp := make([]RoomResponse, len(rooms))
		for i := range rooms {
			resp[i] = toRoomResponse(&rooms[i])
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func setRoomOccupancyHandler(repo facility.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_room_id", "id must be a valid UUID")
			return
		}

		var req SetOccupancyRequest
		if err := decodeAndValidate(r, &req); err != nil {
			handleDomainError(w, err)
			return
		}

		room, err := repo.SetRoomOccupancy(r.Context(), id, req.Occupied)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toRoomResponse(room))
	}
}
