package api

import (
	"encoding/json"
	"net/http"

	"github.com/nerrad567/gray-logic-hap/internal/accessory"
	"github.com/nerrad567/gray-logic-hap/internal/characteristic"
)

// headerConnectionID tags a REST write with a WebSocket connection id.
const headerConnectionID = "X-Connection-ID"

// characteristicsBody is the envelope of characteristic reads and writes.
type characteristicsBody[T any] struct {
	Characteristics []T `json:"characteristics"`
}

// handleAccessories returns the accessory database.
func (s *Server) handleAccessories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.device.Serialize())
}

// handleReadCharacteristics reads ?id=aid.iid[,aid.iid...].
func (s *Server) handleReadCharacteristics(w http.ResponseWriter, r *http.Request) {
	ids, err := accessory.ParseCharacteristicIDs(r.URL.Query().Get("id"))
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	results := s.device.ReadCharacteristics(ids)
	status := http.StatusOK
	if !allSucceeded(results) {
		status = http.StatusMultiStatus
	}
	writeJSON(w, status, characteristicsBody[accessory.CharacteristicResult]{Characteristics: results})
}

// handleWriteCharacteristics applies {"characteristics":[{aid,iid,value,ev}]}.
func (s *Server) handleWriteCharacteristics(w http.ResponseWriter, r *http.Request) {
	var body characteristicsBody[accessory.CharacteristicWrite]
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if len(body.Characteristics) == 0 {
		writeBadRequest(w, "no characteristics to write")
		return
	}

	origin := characteristic.ConnectionID(r.Header.Get(headerConnectionID))
	if origin == characteristic.NoConnection {
		for _, cw := range body.Characteristics {
			if cw.Events != nil {
				writeBadRequest(w, "ev requires the "+headerConnectionID+" header")
				return
			}
		}
	}

	results := s.device.WriteCharacteristics(body.Characteristics, origin)
	if allSucceeded(results) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusMultiStatus, characteristicsBody[accessory.CharacteristicResult]{Characteristics: results})
}

func allSucceeded(results []accessory.CharacteristicResult) bool {
	for _, r := range results {
		if r.Status != accessory.StatusSuccess {
			return false
		}
	}
	return true
}
