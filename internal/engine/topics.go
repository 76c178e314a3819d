package engine

import (
	"strconv"

	"github.com/sonicrain/matchd/internal/domain"
)

// Topic builders for the engine's outbound bus messages. The dispatch shell
// that parses inbound topics lives outside the engine core; these helpers
// only construct the outbound half.

func memberTopic(extID, suffix string) string {
	return "member/" + extID + "/res/" + suffix
}

func roomTopic(masterExtID, suffix string) string {
	return "room/" + masterExtID + "/res/" + suffix
}

func gameTopic(id domain.GameID, suffix string) string {
	return "game/" + strconv.FormatUint(uint64(id), 10) + "/res/" + suffix
}

func groupTopic(id domain.GroupID, suffix string) string {
	return "group/" + strconv.FormatUint(uint64(id), 10) + "/res/" + suffix
}
