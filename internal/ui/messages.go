package ui

import (
	"dirscope/internal/domain"
	"dirscope/internal/services"
)

type engineEventMsg struct {
	event services.Event
}

type childrenMsg struct {
	node domain.TreeNode
	err  error
}

type spaceMsg struct {
	info services.SpaceInfo
	err  error
}
