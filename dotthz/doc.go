// Package dotthz reads and writes dotTHz files: HDF5 containers holding
// one or more named terahertz-spectroscopy measurements.
//
// Each top-level group of a file is one Measurement. The group carries the
// fixed metadata fields as string attributes (user, email, orcid,
// institution, description, version, mode, instrument, time, date), the
// auxiliary md mapping as two parallel string-array attributes (mdKeys and
// mdValues) and one typed N-D dataset per entry of Measurement.Datasets.
//
// Save and Load round-trip a Container losslessly: group, dataset and md
// order, dataset element type and shape, and the exact bits of every value.
//
//	c := dotthz.NewContainer()
//	m := dotthz.NewMeasurement(dotthz.MetaData{User: "Jane", Version: "1.00"})
//	m.MetaData.SetMD("thickness", "0.52 mm")
//	m.Datasets.Set("ds1", dotthz.NewDataset([]float32{1, 2, 3, 4}, 2, 2))
//	c.Groups.Set("sample", m)
//	if err := c.Save("sample.thz"); err != nil {
//	    log.Fatal(err)
//	}
package dotthz
