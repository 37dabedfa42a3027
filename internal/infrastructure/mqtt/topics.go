package mqtt

import (
	"fmt"
	"strconv"
	"strings"
)

// TopicPrefix is the root of every topic this server uses.
const TopicPrefix = "graylogic/hap"

const (
	suffixState = "state"
	suffixSet   = "set"
)

// Topics builds topic names so every component spells them the same way.
//
//	mqtt.Topics{}.CharacteristicState(1, 10) // "graylogic/hap/1/10/state"
type Topics struct{}

// Status is the retained online/offline topic, also used for the LWT.
func (Topics) Status() string {
	return TopicPrefix + "/status"
}

// CharacteristicState is where a characteristic's value is published.
func (Topics) CharacteristicState(aid, iid uint64) string {
	return fmt.Sprintf("%s/%d/%d/%s", TopicPrefix, aid, iid, suffixState)
}

// AllCharacteristicSets matches every set topic.
func (Topics) AllCharacteristicSets() string {
	return TopicPrefix + "/+/+/" + suffixSet
}

// ParseCharacteristicTopic extracts aid and iid from a state or set topic.
func ParseCharacteristicTopic(topic string) (aid, iid uint64, ok bool) {
	rest, found := strings.CutPrefix(topic, TopicPrefix+"/")
	if !found {
		return 0, 0, false
	}

	parts := strings.Split(rest, "/")
	if len(parts) != 3 || (parts[2] != suffixState && parts[2] != suffixSet) {
		return 0, 0, false
	}

	aid, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	iid, err = strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	return aid, iid, true
}
