package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"

	"github.com/trezcool/chaguo/core"
	"github.com/trezcool/chaguo/core/admission"
	"github.com/trezcool/chaguo/core/student"
)

var statusColors = map[admission.Status]*color.Color{
	admission.StatusPending:     color.New(color.FgCyan),
	admission.StatusAdmitted:    color.New(color.FgGreen),
	admission.StatusAccepted:    color.New(color.FgGreen, color.Bold),
	admission.StatusWaitingList: color.New(color.FgYellow),
	admission.StatusRejected:    color.New(color.FgRed),
	admission.StatusDeclined:    color.New(color.FgMagenta),
}

func colorStatus(s admission.Status) string {
	if c, ok := statusColors[s]; ok {
		return c.Sprint(string(s))
	}
	return string(s)
}

// report prints the applications received by an institution, by course, then a count per status.
func (cli *commandLine) report(institutionID string) error {
	ctx := context.Background()
	inst, err := cli.catalog.GetInstitution(ctx, institutionID)
	if err != nil {
		return err
	}
	courses, err := cli.catalog.ListCourses(ctx, inst.ID)
	if err != nil {
		return errors.Wrap(err, "listing courses")
	}
	courseNames := make(map[string]string, len(courses))
	for _, c := range courses {
		courseNames[c.ID] = c.Name
	}

	ordering := []core.DBOrdering{{Field: "appliedAt", Ascending: true}}
	apps, err := cli.admissions.ListForInstitution(ctx, inst.ID, admission.QueryFilter{}, ordering)
	if err != nil {
		return errors.Wrap(err, "listing applications")
	}

	window := "closed"
	if inst.AdmissionsOpen {
		window = "open"
	}
	fmt.Fprintln(cli.out, color.YellowString("\n%s: admissions %s, %d application(s)", inst.Name, window, len(apps)))
	if len(apps) == 0 {
		return nil
	}

	students := make(map[string]student.Student)
	counts := make(map[admission.Status]int)

	table := tablewriter.NewWriter(cli.out)
	table.SetHeader([]string{"Course", "Student", "GPA", "Status", "Applied At"})
	for _, app := range apps {
		stu, ok := students[app.StudentID]
		if !ok {
			if stu, err = cli.students.Get(ctx, app.StudentID); err != nil {
				return errors.Wrapf(err, "getting student %s", app.StudentID)
			}
			students[app.StudentID] = stu
		}
		counts[app.Status]++

		table.Append([]string{
			courseNames[app.CourseID],
			stu.Name,
			strconv.FormatFloat(app.GPAAtApplication, 'f', 2, 64),
			colorStatus(app.Status),
			app.AppliedAt.Format("2006-01-02 15:04"),
		})
	}
	table.Render()

	summary := tablewriter.NewWriter(cli.out)
	summary.SetHeader([]string{"Status", "Applications"})
	for _, s := range admission.AllStatuses {
		if counts[s] > 0 {
			summary.Append([]string{colorStatus(s), strconv.Itoa(counts[s])})
		}
	}
	summary.Render()
	return nil
}
