package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"

	"connex/internal/app"
	"connex/internal/audit"
	"connex/internal/domain"
	"connex/internal/engine"
	"connex/internal/query"
	"connex/internal/repo"
)

func userCmd() *cobra.Command {
	usr := &cobra.Command{Use: "user", Short: "Manage users"}
	usr.AddCommand(userAddCmd())
	usr.AddCommand(userListCmd())
	return usr
}

func userAddCmd() *cobra.Command {
	var name, email, password, role, department string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(password) < 6 {
				return fmt.Errorf("--password must be at least 6 characters")
			}
			return withApp(cmd.Context(), func(ctx context.Context, a *app.Context) error {
				u := domain.User{Name: name, Email: email, Role: role, Department: department}
				if err := u.Validate(); err != nil {
					return err
				}
				hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
				if err != nil {
					return err
				}
				u.PasswordHash = string(hash)
				saved, err := a.Repo.SaveUser(ctx, u)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(saved)
				}
				fmt.Printf("Created user %s (%s)\n", saved.ID, saved.Email)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "full name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")
	cmd.Flags().StringVar(&role, "role", domain.RoleMember, "member|manager|admin")
	cmd.Flags().StringVar(&department, "department", domain.DepartmentEngineering, "department")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func userListCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.Context) error {
				items, err := a.Query.Users(ctx, repo.UserFilter{Limit: limit})
				if err != nil {
					return err
				}
				rows := make([]table.Row, 0, len(items))
				for _, u := range items {
					rows = append(rows, table.Row{u.ID, u.Name, u.Email, u.Role, u.Department})
				}
				return printTable(items, table.Row{"ID", "Name", "Email", "Role", "Department"}, rows)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum rows")
	return cmd
}

func projectCmd() *cobra.Command {
	prj := &cobra.Command{Use: "project", Short: "Manage projects"}
	prj.AddCommand(projectCreateCmd())
	prj.AddCommand(projectListCmd())
	prj.AddCommand(projectShowCmd())
	prj.AddCommand(projectUpdateCmd())
	prj.AddCommand(projectDeleteCmd())
	prj.AddCommand(projectRecalcCmd())
	prj.AddCommand(projectMemberCmd())
	return prj
}

type projectFlags struct {
	name, description, status, priority string
	members                             []string
	start, end, due                     string
	budget                              float64
}

func (f *projectFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "project name")
	cmd.Flags().StringVar(&f.description, "description", "", "description")
	cmd.Flags().StringVar(&f.status, "status", "", "Planning|In Progress|Completed|On Hold|Cancelled")
	cmd.Flags().StringVar(&f.priority, "priority", "", "Low|Medium|High")
	cmd.Flags().StringSliceVar(&f.members, "members", nil, "member user ids")
	cmd.Flags().StringVar(&f.start, "start", "", "start date")
	cmd.Flags().StringVar(&f.end, "end", "", "end date")
	cmd.Flags().StringVar(&f.due, "due", "", "due date")
	cmd.Flags().Float64Var(&f.budget, "budget", 0, "budget")
}

func (f *projectFlags) command(cmd *cobra.Command) (engine.ProjectCommand, error) {
	c := engine.ProjectCommand{
		Name:        optionalString(cmd, "name", f.name),
		Description: optionalString(cmd, "description", f.description),
		Status:      optionalString(cmd, "status", f.status),
		Priority:    optionalString(cmd, "priority", f.priority),
		Members:     optionalStrings(cmd, "members", f.members),
	}
	var err error
	if c.StartDate, err = optionalTime(cmd, "start", f.start); err != nil {
		return c, err
	}
	if c.EndDate, err = optionalTime(cmd, "end", f.end); err != nil {
		return c, err
	}
	if c.DueDate, err = optionalTime(cmd, "due", f.due); err != nil {
		return c, err
	}
	if cmd.Flags().Changed("budget") {
		c.Budget = engine.Ptr(f.budget)
	}
	return c, nil
}

func printProject(v query.ProjectView) error {
	if viper.GetBool("json") {
		return printJSON(v)
	}
	names := make([]string, 0, len(v.Members))
	for _, m := range v.Members {
		names = append(names, m.Name)
	}
	fmt.Printf("%s  %s\n", v.ID, v.Name)
	fmt.Printf("  status:   %s (%s priority)\n", v.Status, v.Priority)
	fmt.Printf("  progress: %d%% of %d tasks\n", v.Progress, len(v.Tasks))
	fmt.Printf("  members:  %s\n", strings.Join(names, ", "))
	fmt.Printf("  owner:    %s\n", v.CreatedBy.Name)
	return nil
}

func projectCreateCmd() *cobra.Command {
	var f projectFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create project",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := f.command(cmd)
			if err != nil {
				return err
			}
			return withActor(cmd.Context(), func(ctx context.Context, a *app.Context, actor domain.User) error {
				res, err := a.Engine.CreateProject(ctx, c, actor)
				if err != nil {
					return err
				}
				v, err := a.Query.Project(ctx, res.New.ID)
				if err != nil {
					return err
				}
				return printProject(v)
			})
		},
	}
	f.bind(cmd)
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func projectListCmd() *cobra.Command {
	var member, status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.Context) error {
				items, err := a.Query.Projects(ctx, repo.ProjectFilter{Member: member, Status: status})
				if err != nil {
					return err
				}
				rows := make([]table.Row, 0, len(items))
				for _, p := range items {
					rows = append(rows, table.Row{p.ID, p.Name, p.Status, p.Priority, fmt.Sprintf("%d%%", p.Progress), len(p.Tasks)})
				}
				return printTable(items, table.Row{"ID", "Name", "Status", "Priority", "Progress", "Tasks"}, rows)
			})
		},
	}
	cmd.Flags().StringVar(&member, "member", "", "only projects with this member")
	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	return cmd
}

func projectShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.Context) error {
				v, err := a.Query.Project(ctx, args[0])
				if err != nil {
					return err
				}
				return printProject(v)
			})
		},
	}
}

func projectUpdateCmd() *cobra.Command {
	var f projectFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update project fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := f.command(cmd)
			if err != nil {
				return err
			}
			return withActor(cmd.Context(), func(ctx context.Context, a *app.Context, actor domain.User) error {
				if _, err := a.Engine.UpdateProject(ctx, args[0], c, actor); err != nil {
					return err
				}
				v, err := a.Query.Project(ctx, args[0])
				if err != nil {
					return err
				}
				return printProject(v)
			})
		},
	}
	f.bind(cmd)
	return cmd
}

func projectDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withActor(cmd.Context(), func(ctx context.Context, a *app.Context, actor domain.User) error {
				if _, err := a.Engine.DeleteProject(ctx, args[0], actor); err != nil {
					return err
				}
				fmt.Println("deleted", args[0])
				return nil
			})
		},
	}
}

func projectRecalcCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recalc <id>",
		Short: "Recompute progress from the project's tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.Context) error {
				p, err := a.Engine.RecalculateProgress(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Printf("%s progress %d%%\n", p.ID, p.Progress)
				return nil
			})
		},
	}
}

func projectMemberCmd() *cobra.Command {
	mem := &cobra.Command{Use: "member", Short: "Manage project members"}
	mem.AddCommand(&cobra.Command{
		Use:   "add <project-id> <user-id>",
		Short: "Add a member",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withActor(cmd.Context(), func(ctx context.Context, a *app.Context, actor domain.User) error {
				res, err := a.Engine.AddProjectMember(ctx, args[0], args[1], actor)
				if err != nil {
					return err
				}
				fmt.Printf("%s members: %s\n", res.New.ID, strings.Join(res.New.Members, ", "))
				return nil
			})
		},
	})
	mem.AddCommand(&cobra.Command{
		Use:   "remove <project-id> <user-id>",
		Short: "Remove a member",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withActor(cmd.Context(), func(ctx context.Context, a *app.Context, actor domain.User) error {
				res, err := a.Engine.RemoveProjectMember(ctx, args[0], args[1], actor)
				if err != nil {
					return err
				}
				fmt.Printf("%s members: %s\n", res.New.ID, strings.Join(res.New.Members, ", "))
				return nil
			})
		},
	})
	return mem
}

func taskCmd() *cobra.Command {
	tsk := &cobra.Command{Use: "task", Short: "Manage tasks"}
	tsk.AddCommand(taskCreateCmd())
	tsk.AddCommand(taskUpdateCmd())
	tsk.AddCommand(taskListCmd())
	tsk.AddCommand(taskDeleteCmd())
	return tsk
}

type taskFlags struct {
	title, description, status, priority, category string
	assignee, project, deadline                    string
}

func (f *taskFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "task title")
	cmd.Flags().StringVar(&f.description, "description", "", "description")
	cmd.Flags().StringVar(&f.status, "status", "", "Pending|In Progress|Completed|Blocked|Cancelled")
	cmd.Flags().StringVar(&f.priority, "priority", "", "Low|Medium|High")
	cmd.Flags().StringVar(&f.category, "category", "", "category")
	cmd.Flags().StringVar(&f.assignee, "assignee", "", "assigned user id")
	cmd.Flags().StringVar(&f.project, "project", "", "project id")
	cmd.Flags().StringVar(&f.deadline, "deadline", "", "deadline (RFC3339 or YYYY-MM-DD)")
}

func (f *taskFlags) command(cmd *cobra.Command) (engine.TaskCommand, error) {
	c := engine.TaskCommand{
		Title:       optionalString(cmd, "title", f.title),
		Description: optionalString(cmd, "description", f.description),
		Status:      optionalString(cmd, "status", f.status),
		Priority:    optionalString(cmd, "priority", f.priority),
		Category:    optionalString(cmd, "category", f.category),
		AssignedTo:  optionalString(cmd, "assignee", f.assignee),
		ProjectID:   optionalString(cmd, "project", f.project),
	}
	var err error
	c.Deadline, err = optionalTime(cmd, "deadline", f.deadline)
	return c, err
}

func taskRows(items []query.TaskView) []table.Row {
	rows := make([]table.Row, 0, len(items))
	for _, t := range items {
		rows = append(rows, table.Row{t.ID, t.Title, t.Status, t.Priority, t.AssignedTo.Name, t.Project.Name, formatTime(&t.Deadline)})
	}
	return rows
}

var taskHeader = table.Row{"ID", "Title", "Status", "Priority", "Assignee", "Project", "Deadline"}

func taskCreateCmd() *cobra.Command {
	var f taskFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create task",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := f.command(cmd)
			if err != nil {
				return err
			}
			return withActor(cmd.Context(), func(ctx context.Context, a *app.Context, actor domain.User) error {
				res, err := a.Engine.CreateTask(ctx, c, actor)
				if err != nil {
					return err
				}
				v, err := a.Query.Task(ctx, res.New.ID)
				if err != nil {
					return err
				}
				return printTable(v, taskHeader, taskRows([]query.TaskView{v}))
			})
		},
	}
	f.bind(cmd)
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("assignee")
	_ = cmd.MarkFlagRequired("deadline")
	return cmd
}

func taskUpdateCmd() *cobra.Command {
	var f taskFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update task fields",
		Long:  "Moving a task to Completed stamps its completion date, re-derives project progress and records task_completed.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := f.command(cmd)
			if err != nil {
				return err
			}
			return withActor(cmd.Context(), func(ctx context.Context, a *app.Context, actor domain.User) error {
				if _, err := a.Engine.UpdateTask(ctx, args[0], c, actor); err != nil {
					return err
				}
				v, err := a.Query.Task(ctx, args[0])
				if err != nil {
					return err
				}
				return printTable(v, taskHeader, taskRows([]query.TaskView{v}))
			})
		},
	}
	f.bind(cmd)
	return cmd
}

func taskListCmd() *cobra.Command {
	var project, assignee, status string
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.Context) error {
				items, err := a.Query.Tasks(ctx, repo.TaskFilter{ProjectID: project, AssignedTo: assignee, Status: status, Limit: limit})
				if err != nil {
					return err
				}
				return printTable(items, taskHeader, taskRows(items))
			})
		},
	}
	cmd.Flags().StringVar(&project, "project", "", "filter by project id")
	cmd.Flags().StringVar(&assignee, "assignee", "", "filter by assigned user id")
	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum rows")
	return cmd
}

func taskDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withActor(cmd.Context(), func(ctx context.Context, a *app.Context, actor domain.User) error {
				if _, err := a.Engine.DeleteTask(ctx, args[0], actor); err != nil {
					return err
				}
				fmt.Println("deleted", args[0])
				return nil
			})
		},
	}
}

func meetingCmd() *cobra.Command {
	mtg := &cobra.Command{Use: "meeting", Short: "Manage meetings"}
	mtg.AddCommand(meetingCreateCmd())
	mtg.AddCommand(meetingUpdateCmd())
	mtg.AddCommand(meetingJoinCmd())
	mtg.AddCommand(meetingListCmd())
	mtg.AddCommand(meetingViewCmd("ongoing", "Meetings in progress", query.Service.Ongoing))
	mtg.AddCommand(meetingViewCmd("upcoming", "Scheduled meetings ahead", query.Service.Upcoming))
	mtg.AddCommand(meetingViewCmd("history", "Completed meetings", query.Service.History))
	return mtg
}

type meetingFlags struct {
	name, description, mtype, status, at, location, project string
	duration                                                int
	agenda                                                  []string
}

func (f *meetingFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "meeting name")
	cmd.Flags().StringVar(&f.description, "description", "", "description")
	cmd.Flags().StringVar(&f.mtype, "type", "", "Daily|Planning|Review|Sprint|Technical|External|Strategy|Other")
	cmd.Flags().StringVar(&f.status, "status", "", "Scheduled|In Progress|Completed|Cancelled")
	cmd.Flags().StringVar(&f.at, "time", "", "start time (RFC3339)")
	cmd.Flags().StringVar(&f.location, "location", "", "location")
	cmd.Flags().StringVar(&f.project, "project", "", "project id")
	cmd.Flags().IntVar(&f.duration, "duration", 0, "duration in minutes")
	cmd.Flags().StringSliceVar(&f.agenda, "agenda", nil, "agenda items")
}

func (f *meetingFlags) command(cmd *cobra.Command) (engine.MeetingCommand, error) {
	c := engine.MeetingCommand{
		Name:        optionalString(cmd, "name", f.name),
		Description: optionalString(cmd, "description", f.description),
		Type:        optionalString(cmd, "type", f.mtype),
		Status:      optionalString(cmd, "status", f.status),
		Location:    optionalString(cmd, "location", f.location),
		ProjectID:   optionalString(cmd, "project", f.project),
		Agenda:      optionalStrings(cmd, "agenda", f.agenda),
	}
	if cmd.Flags().Changed("duration") {
		c.Duration = engine.Ptr(f.duration)
	}
	var err error
	c.Time, err = optionalTime(cmd, "time", f.at)
	return c, err
}

var meetingHeader = table.Row{"ID", "Name", "Type", "Status", "Time", "Host", "Joined"}

func meetingRows(items []query.MeetingView) []table.Row {
	rows := make([]table.Row, 0, len(items))
	for _, m := range items {
		rows = append(rows, table.Row{m.ID, m.Name, m.Type, m.Status, formatTime(&m.Time), m.Host.Name, len(m.JoinedMembers)})
	}
	return rows
}

func meetingCreateCmd() *cobra.Command {
	var f meetingFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Schedule meeting",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := f.command(cmd)
			if err != nil {
				return err
			}
			return withActor(cmd.Context(), func(ctx context.Context, a *app.Context, actor domain.User) error {
				res, err := a.Engine.CreateMeeting(ctx, c, actor)
				if err != nil {
					return err
				}
				v, err := a.Query.Meeting(ctx, res.New.ID)
				if err != nil {
					return err
				}
				return printTable(v, meetingHeader, meetingRows([]query.MeetingView{v}))
			})
		},
	}
	f.bind(cmd)
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("time")
	return cmd
}

func meetingUpdateCmd() *cobra.Command {
	var f meetingFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update meeting fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := f.command(cmd)
			if err != nil {
				return err
			}
			return withActor(cmd.Context(), func(ctx context.Context, a *app.Context, actor domain.User) error {
				if _, err := a.Engine.UpdateMeeting(ctx, args[0], c, actor); err != nil {
					return err
				}
				v, err := a.Query.Meeting(ctx, args[0])
				if err != nil {
					return err
				}
				return printTable(v, meetingHeader, meetingRows([]query.MeetingView{v}))
			})
		},
	}
	f.bind(cmd)
	return cmd
}

func meetingJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <id>",
		Short: "Join meeting as the actor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withActor(cmd.Context(), func(ctx context.Context, a *app.Context, actor domain.User) error {
				res, err := a.Engine.JoinMeeting(ctx, args[0], actor)
				if err != nil {
					return err
				}
				fmt.Printf("%s joined by %d members\n", res.New.ID, len(res.New.JoinedMembers))
				return nil
			})
		},
	}
}

func meetingListCmd() *cobra.Command {
	var project, status, mtype string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List meetings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.Context) error {
				items, err := a.Query.Meetings(ctx, repo.MeetingFilter{ProjectID: project, Status: status, Type: mtype})
				if err != nil {
					return err
				}
				return printTable(items, meetingHeader, meetingRows(items))
			})
		},
	}
	cmd.Flags().StringVar(&project, "project", "", "filter by project id")
	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	cmd.Flags().StringVar(&mtype, "type", "", "filter by type")
	return cmd
}

func meetingViewCmd(use, short string, view func(query.Service, context.Context) ([]query.MeetingView, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.Context) error {
				items, err := view(a.Query, ctx)
				if err != nil {
					return err
				}
				return printTable(items, meetingHeader, meetingRows(items))
			})
		},
	}
}

func actionCmd() *cobra.Command {
	act := &cobra.Command{Use: "action", Short: "Read and append the action ledger"}
	act.AddCommand(actionAddCmd())
	act.AddCommand(actionListCmd())
	return act
}

var actionHeader = table.Row{"Seq", "When", "Type", "Title", "User", "Department"}

func actionRows(items []query.ActionView) []table.Row {
	rows := make([]table.Row, 0, len(items))
	for _, a := range items {
		rows = append(rows, table.Row{a.Seq, formatTime(&a.CreatedAt), a.Type, a.Title, a.User.Name, a.Department})
	}
	return rows
}

func actionAddCmd() *cobra.Command {
	var actionType, title, description, project, task, meeting, priority string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a manual action such as a code review",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withActor(cmd.Context(), func(ctx context.Context, a *app.Context, actor domain.User) error {
				saved, err := a.Recorder.Record(ctx, audit.Request{
					Type:        actionType,
					Title:       title,
					Subject:     title,
					Description: description,
					Actor:       actor,
					ProjectID:   project,
					TaskID:      task,
					MeetingID:   meeting,
					Priority:    priority,
				})
				if err != nil {
					return err
				}
				v, err := a.Query.Action(ctx, saved.ID)
				if err != nil {
					return err
				}
				return printTable(v, actionHeader, actionRows([]query.ActionView{v}))
			})
		},
	}
	cmd.Flags().StringVar(&actionType, "type", "", strings.Join(domain.ActionTypes, "|"))
	cmd.Flags().StringVar(&title, "title", "", "title")
	cmd.Flags().StringVar(&description, "description", "", "description")
	cmd.Flags().StringVar(&project, "project", "", "project id")
	cmd.Flags().StringVar(&task, "task", "", "task id")
	cmd.Flags().StringVar(&meeting, "meeting", "", "meeting id")
	cmd.Flags().StringVar(&priority, "priority", "", "Low|Medium|High")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func actionListCmd() *cobra.Command {
	var q query.ActionQuery
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List actions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.Context) error {
				items, err := a.Query.Actions(ctx, q)
				if err != nil {
					return err
				}
				return printTable(items, actionHeader, actionRows(items))
			})
		},
	}
	cmd.Flags().StringVar(&q.ProjectID, "project", "", "filter by project id")
	cmd.Flags().StringVar(&q.UserID, "user", "", "filter by user id")
	cmd.Flags().StringVar(&q.Type, "type", "", "filter by action type")
	cmd.Flags().StringVar(&q.Department, "department", query.DepartmentAll, "filter by department")
	cmd.Flags().IntVar(&q.Limit, "limit", 0, "maximum rows")
	return cmd
}

func timelineCmd() *cobra.Command {
	var project, department string
	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Recent activity of a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.Context) error {
				items, err := a.Query.Timeline(ctx, project, department)
				if err != nil {
					return err
				}
				return printTable(items, actionHeader, actionRows(items))
			})
		},
	}
	cmd.Flags().StringVar(&project, "project", "", "project id")
	cmd.Flags().StringVar(&department, "department", query.DepartmentAll, "filter by department")
	return cmd
}
