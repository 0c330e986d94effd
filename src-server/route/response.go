package route

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"potluck/src-server/model"
	"potluck/src-server/utils"
)

func Response(muxer *http.ServeMux, as *utils.AppState) {
	type ResponseRespBody struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		Attending bool   `json:"attending"`
		Category  string `json:"category"`
		Dish      string `json:"dish"`
		CreatedAt int64  `json:"createdAt"`
	}

	type InsertReqBody struct {
		Name      string `json:"name"`
		Attending bool   `json:"attending"`
		Category  string `json:"category"`
		Dish      string `json:"dish"`
	}

	type InsertRespBody struct {
		ID string `json:"id"`
	}

	type UpdateReqBody struct {
		Name      *string `json:"name"`
		Attending *bool   `json:"attending"`
		Category  *string `json:"category"`
		Dish      *string `json:"dish"`
	}

	// get every response, oldest first
	muxer.HandleFunc("GET /api/responses", func(w http.ResponseWriter, r *http.Request) {
		startTimer := time.Now()
		responseModels := make([]model.Response, 0)
		if err := as.BunDB.
			NewSelect().
			Model(&responseModels).
			Order("created_at ASC").
			Scan(r.Context()); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(fmt.Sprintf("Can't get responses: %s", err.Error())))
			return
		}
		as.RecordDatabaseRead(time.Since(startTimer))

		respBody := make([]ResponseRespBody, 0, len(responseModels))
		for _, responseModel := range responseModels {
			respBody = append(respBody, ResponseRespBody{
				ID:        responseModel.ID,
				Name:      responseModel.Name,
				Attending: responseModel.Attending,
				Category:  responseModel.Category,
				Dish:      responseModel.Dish,
				CreatedAt: responseModel.CreatedAtUnixUTC,
			})
		}
		if err := json.NewEncoder(w).Encode(respBody); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(fmt.Sprintf("Can't encode responses: %s", err.Error())))
			return
		}
	})

	// insert one response, reply with the server-assigned id
	muxer.HandleFunc("POST /api/responses", func(w http.ResponseWriter, r *http.Request) {
		var reqBody InsertReqBody
		if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(fmt.Sprintf("Can't parse request body: %s", err.Error())))
			return
		}
		if reqBody.Name == "" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Name is required"))
			return
		}
		if reqBody.Category == "" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Category is required"))
			return
		}

		responseModel := model.Response{
			Name:      reqBody.Name,
			Attending: reqBody.Attending,
			Category:  reqBody.Category,
			Dish:      reqBody.Dish,
		}
		startTimer := time.Now()
		if err := responseModel.Insert(r.Context(), as.BunDB); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(fmt.Sprintf("Can't insert response: %s", err.Error())))
			return
		}
		as.RecordDatabaseWrite(time.Since(startTimer))
		as.Hub.Broadcast()

		if err := json.NewEncoder(w).Encode(InsertRespBody{ID: responseModel.ID}); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(fmt.Sprintf("Can't encode response: %s", err.Error())))
			return
		}
	})

	// partial update of one response by id
	muxer.HandleFunc("PATCH /api/responses/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if id == "" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Response id is required"))
			return
		}

		var reqBody UpdateReqBody
		if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(fmt.Sprintf("Can't parse request body: %s", err.Error())))
			return
		}
		if reqBody.Name != nil && *reqBody.Name == "" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Name is required"))
			return
		}

		query := as.BunDB.
			NewUpdate().
			Model((*model.Response)(nil)).
			Where("id = ?", id)
		touched := false
		if reqBody.Name != nil {
			query = query.Set("name = ?", *reqBody.Name)
			touched = true
		}
		if reqBody.Attending != nil {
			query = query.Set("attending = ?", *reqBody.Attending)
			touched = true
		}
		if reqBody.Category != nil {
			query = query.Set("category = ?", *reqBody.Category)
			touched = true
		}
		if reqBody.Dish != nil {
			query = query.Set("dish = ?", *reqBody.Dish)
			touched = true
		}
		if !touched {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Nothing to update"))
			return
		}

		startTimer := time.Now()
		result, err := query.Exec(r.Context())
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(fmt.Sprintf("Can't update response: %s", err.Error())))
			return
		}
		as.RecordDatabaseWrite(time.Since(startTimer))
		if affected(result) == 0 {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte("Response not found"))
			return
		}
		as.Hub.Broadcast()

		w.WriteHeader(http.StatusOK)
	})

	// delete one response by id
	muxer.HandleFunc("DELETE /api/responses/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if id == "" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Response id is required"))
			return
		}

		startTimer := time.Now()
		result, err := as.BunDB.
			NewDelete().
			Model((*model.Response)(nil)).
			Where("id = ?", id).
			Exec(r.Context())
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(fmt.Sprintf("Can't delete response: %s", err.Error())))
			return
		}
		as.RecordDatabaseWrite(time.Since(startTimer))
		if affected(result) == 0 {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte("Response not found"))
			return
		}
		as.Hub.Broadcast()

		w.WriteHeader(http.StatusOK)
	})
}

func affected(result sql.Result) int64 {
	count, err := result.RowsAffected()
	if err != nil {
		return 0
	}
	return count
}
