// Package policy answers "may this member do that" for every protected
// operation. Predicates are pure: they read the actor's identity and role and
// the ownership facts handed to them, and never touch storage.
package policy

import (
	"tasktracker/internal/model"
)

// CanManageMembers gates member creation and deletion.
func CanManageMembers(actor *model.Member) bool {
	return IsAdmin(actor)
}

func CanListMembers(actor *model.Member) bool {
	return actor != nil && actor.HasRole(model.RoleAdmin, model.RoleManager)
}

func CanViewOrEditMember(actor, target *model.Member) bool {
	if actor == nil || target == nil {
		return false
	}
	return actor.HasRole(model.RoleAdmin, model.RoleManager) || actor.ID == target.ID
}

func CanEditTask(actor *model.Member, task *model.Task) bool {
	if actor == nil || task == nil {
		return false
	}
	return actor.ID == task.CreatedByID || IsAdmin(actor)
}

func CanAssignTask(actor *model.Member, task *model.Task) bool {
	if actor == nil || task == nil {
		return false
	}
	return actor.HasRole(model.RoleAdmin, model.RoleManager) || actor.ID == task.CreatedByID
}

// CanCompleteAssignment requires an assignment row binding actor to the task.
func CanCompleteAssignment(actor *model.Member, task *model.Task, assignment *model.TaskAssignment) bool {
	if actor == nil || task == nil || assignment == nil {
		return false
	}
	return assignment.MemberID == actor.ID && assignment.TaskID == task.ID
}

// CanViewTask covers task detail and the assignment listing.
func CanViewTask(actor *model.Member, task *model.Task, assigned bool) bool {
	if actor == nil || task == nil {
		return false
	}
	return assigned || actor.ID == task.CreatedByID || actor.HasRole(model.RoleAdmin, model.RoleManager)
}

func IsAdmin(actor *model.Member) bool {
	return actor != nil && actor.HasRole(model.RoleAdmin)
}

// CanAnswerHelpRequest requires the actor to be the admin the request was
// addressed to. Being an admin is necessary but not sufficient.
func CanAnswerHelpRequest(actor *model.Member, req *model.HelpRequest) bool {
	if !IsAdmin(actor) || req == nil {
		return false
	}
	return req.AdminID == actor.ID
}
